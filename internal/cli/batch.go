package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nasdate/internal/platform"
	"nasdate/pkg/batch"
)

// batchFlags holds flags for the batch command
type batchFlags struct {
	conn       ConnectionFlags
	date       string
	fromFile   string
	dir        string
	parallel   int
	setCreated bool
	jsonOut    bool
}

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch --date <date> [paths...]",
		Short: "Set the modification date of many files",
		Long: `Batch applies the same date to many files, each under its own
backup/write/verify/rollback transaction. Files are independent: one
failure never stops the rest, and the run always ends with a complete
per-file report. Paths come from the arguments, from --from-file (one
path per line, # starts a comment), or from --dir (every PDF below a
directory on the share).

Exit code 0 means every file committed, 1 means a partial result,
2 means nothing committed, and 3 means the run was interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, flags, args)
		},
	}

	AddConnectionFlags(cmd, &flags.conn)
	cmd.Flags().StringVar(&flags.date, "date", "", "date to apply (required)")
	cmd.Flags().StringVar(&flags.fromFile, "from-file", "", "read paths from a file, - for stdin")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "process every PDF below this share directory")
	cmd.Flags().IntVar(&flags.parallel, "parallel", 0, "concurrent transactions (default: pool size)")
	cmd.Flags().BoolVar(&flags.setCreated, "created", false, "also set creation times where supported")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "output as JSON")
	cmd.MarkFlagRequired("date")

	return cmd
}

func runBatch(cmd *cobra.Command, flags *batchFlags, args []string) error {
	when, err := parseTimestamp(flags.date)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p, err := resolveTarget(&flags.conn, arg)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}

	if flags.fromFile != "" {
		fromFile, err := readPathList(flags.fromFile)
		if err != nil {
			return err
		}
		paths = append(paths, fromFile...)
	}

	a, err := newApp(&flags.conn)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	if flags.dir != "" {
		fromDir, err := listPDFs(cmd, a, flags.dir)
		if err != nil {
			return err
		}
		paths = append(paths, fromDir...)
	}

	paths = dedupe(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no files to process: pass paths, --from-file or --dir")
	}

	workers := flags.parallel
	if workers <= 0 {
		workers = a.cfg.Performance.MaxWorkers
	}

	formatter := newFormatter(a.cfg, flags.jsonOut)
	if err := formatter.Start(os.Stdout, len(paths)); err != nil {
		return err
	}

	runner := batch.NewRunner(a.coordinator(), a.logger)
	report := runner.Run(ctx, batch.Request{
		Share:       a.cfg.Server.Share,
		Paths:       paths,
		Target:      when,
		SetCreated:  flags.setCreated,
		Concurrency: workers,
	}, func(u batch.Update) {
		formatter.Result(u.Index, u.Total, u.Result)
	})

	if err := formatter.Complete(report); err != nil {
		return err
	}

	if code := report.Status.ExitCode(); code != 0 {
		a.Close()
		os.Exit(code)
	}
	return nil
}

// readPathList reads share paths from a file, one per line. Blank lines
// and # comments are skipped.
func readPathList(name string) ([]string, error) {
	var file *os.File
	if name == "-" {
		file = os.Stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open path list: %w", err)
		}
		defer f.Close()
		file = f
	}

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, platform.NormalizeRemotePath(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path list: %w", err)
	}
	return paths, nil
}

// listPDFs walks one share directory and returns its PDF files
func listPDFs(cmd *cobra.Command, a *app, dir string) ([]string, error) {
	ctx := cmd.Context()
	lease, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", a.cfg.Server.Host, err)
	}

	infos, err := lease.List(ctx, dir)
	lease.Release(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}

	base := strings.Trim(dir, "/")
	var paths []string
	for _, info := range infos {
		if info.IsDir || !isPDF(info.Path) {
			continue
		}
		p := info.Path
		if base != "" {
			p = base + "/" + p
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// dedupe drops repeated paths, keeping first-seen order. The coordinator
// serializes same-path transactions anyway, but applying the same date
// twice is pointless work.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nasdate/pkg/models"
)

// listFlags holds flags for the list command
type listFlags struct {
	conn    ConnectionFlags
	path    string
	all     bool
	jsonOut bool
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List PDF files on the share",
		Long: `List walks the share (or a directory below it) and prints every
PDF file with its size and modification time. Use --all to include
non-PDF files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.path = args[0]
			}
			return runList(cmd, flags)
		},
	}

	AddConnectionFlags(cmd, &flags.conn)
	cmd.Flags().BoolVar(&flags.all, "all", false, "include non-PDF files")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "output as JSON")

	return cmd
}

func runList(cmd *cobra.Command, flags *listFlags) error {
	path, err := resolveTarget(&flags.conn, flags.path)
	if err != nil {
		return err
	}

	a, err := newApp(&flags.conn)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	lease, err := a.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", a.cfg.Server.Host, err)
	}

	infos, err := lease.List(ctx, path)
	lease.Release(err)
	if err != nil {
		return fmt.Errorf("failed to list %q: %w", path, err)
	}

	files := make([]models.RemoteFile, 0, len(infos))
	for _, info := range infos {
		if info.IsDir {
			continue
		}
		if !flags.all && !isPDF(info.Path) {
			continue
		}
		files = append(files, models.RemoteFile{
			Share:   a.cfg.Server.Share,
			Path:    info.Path,
			Size:    info.Size,
			ModTime: info.ModTime,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if flags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	}

	if len(files) == 0 {
		fmt.Println("No files found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tSIZE\tMODIFIED")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Path, formatSize(f.Size), f.ModTime.Format("2006-01-02 15:04:05"))
	}
	w.Flush()

	fmt.Printf("\n%d file(s) on //%s/%s\n", len(files), a.cfg.Server.Host, a.cfg.Server.Share)
	return nil
}

// formatSize renders a byte count for humans
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nasdate/pkg/logging"
	"nasdate/pkg/pdf"
	"nasdate/pkg/ratelimit"
)

// previewFlags holds flags for the preview command
type previewFlags struct {
	conn    ConnectionFlags
	page    int
	chars   int
	noText  bool
	jsonOut bool
}

// NewPreviewCommand creates the preview command
func NewPreviewCommand() *cobra.Command {
	flags := &previewFlags{}

	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Show a PDF's metadata and a text excerpt",
		Long: `Preview downloads one PDF from the share and prints its document
info (pages, title, author, embedded dates) and a plain-text excerpt of
one page, so the right file can be identified before changing its date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, flags, args[0])
		},
	}

	AddConnectionFlags(cmd, &flags.conn)
	cmd.Flags().IntVar(&flags.page, "page", 1, "page to excerpt")
	cmd.Flags().IntVar(&flags.chars, "chars", 500, "maximum excerpt length")
	cmd.Flags().BoolVar(&flags.noText, "no-text", false, "skip the text excerpt")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "output as JSON")

	return cmd
}

func runPreview(cmd *cobra.Command, flags *previewFlags, target string) error {
	path, err := resolveTarget(&flags.conn, target)
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

	data, info, err := func() ([]byte, *pdf.DocumentInfo, error) {
		reader, err := lease.Read(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %q: %w", path, err)
		}
		defer reader.Close()

		limited := ratelimit.NewReader(ctx, reader, ratelimit.NewLimiter(a.cfg.Performance.BandwidthLimit))
		data, err := io.ReadAll(limited)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to download %q: %w", path, err)
		}

		info, err := pdf.Inspect(data)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot preview %q: %w", path, err)
		}
		return data, info, nil
	}()
	lease.Release(err)
	if err != nil {
		return err
	}

	var excerpt string
	if !flags.noText && info.Pages > 0 {
		excerpt, err = pdf.PageText(data, flags.page, flags.chars)
		if err != nil {
			// A broken text layer should not hide the metadata
			a.logger.Warn(ctx, "text extraction failed", logging.Fields{
				"path": path, "error": err.Error(),
			})
			excerpt = ""
		}
	}

	ts, err := lookupTimestamps(cmd, a, path)
	if err != nil {
		return err
	}

	if flags.jsonOut {
		return printPreviewJSON(path, info, ts, excerpt)
	}
	printPreview(path, info, ts, excerpt, flags.page)
	return nil
}

// fileTimes is the filesystem-level view shown beside the document info
type fileTimes struct {
	Modified   time.Time
	Created    time.Time
	HasCreated bool
}

func lookupTimestamps(cmd *cobra.Command, a *app, path string) (fileTimes, error) {
	ctx := cmd.Context()
	lease, err := a.pool.Acquire(ctx)
	if err != nil {
		return fileTimes{}, err
	}

	ts, err := lease.Timestamps(ctx, path)
	lease.Release(err)
	if err != nil {
		return fileTimes{}, fmt.Errorf("failed to read timestamps of %q: %w", path, err)
	}
	return fileTimes{Modified: ts.Modified, Created: ts.Created, HasCreated: ts.HasCreated}, nil
}

func printPreview(path string, info *pdf.DocumentInfo, ts fileTimes, excerpt string, page int) {
	fmt.Printf("File:     %s\n", path)
	fmt.Printf("Pages:    %d\n", info.Pages)
	if info.Title != "" {
		fmt.Printf("Title:    %s\n", info.Title)
	}
	if info.Author != "" {
		fmt.Printf("Author:   %s\n", info.Author)
	}
	if info.Creator != "" {
		fmt.Printf("Creator:  %s\n", info.Creator)
	}
	if !info.Created.IsZero() {
		fmt.Printf("Doc created:  %s\n", info.Created.Format("2006-01-02 15:04:05"))
	}
	if !info.Modified.IsZero() {
		fmt.Printf("Doc modified: %s\n", info.Modified.Format("2006-01-02 15:04:05"))
	}

	fmt.Printf("\nFile modified: %s\n", ts.Modified.Format("2006-01-02 15:04:05"))
	if ts.HasCreated {
		fmt.Printf("File created:  %s\n", ts.Created.Format("2006-01-02 15:04:05"))
	}

	if !info.EOFMarker {
		fmt.Printf("\nWarning: missing %%%%EOF trailer marker, file may be truncated\n")
	}

	if excerpt != "" {
		fmt.Printf("\n--- page %d ---\n%s\n", page, excerpt)
	}
}

func printPreviewJSON(path string, info *pdf.DocumentInfo, ts fileTimes, excerpt string) error {
	out := map[string]interface{}{
		"path":          path,
		"pages":         info.Pages,
		"eof_marker":    info.EOFMarker,
		"file_modified": ts.Modified,
	}
	if info.Title != "" {
		out["title"] = info.Title
	}
	if info.Author != "" {
		out["author"] = info.Author
	}
	if info.Creator != "" {
		out["creator"] = info.Creator
	}
	if !info.Created.IsZero() {
		out["doc_created"] = info.Created
	}
	if !info.Modified.IsZero() {
		out["doc_modified"] = info.Modified
	}
	if ts.HasCreated {
		out["file_created"] = ts.Created
	}
	if excerpt != "" {
		out["excerpt"] = excerpt
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

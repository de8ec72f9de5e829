package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nasdate/pkg/storage"
)

// checkFlags holds flags for the check command
type checkFlags struct {
	conn ConnectionFlags
}

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the share connection",
		Long: `Check dials the configured share, lists its root and reports the
connection details, so credentials and reachability can be verified
before running a batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, flags)
		},
	}

	AddConnectionFlags(cmd, &flags.conn)

	return cmd
}

func runCheck(cmd *cobra.Command, flags *checkFlags) error {
	a, err := newApp(&flags.conn)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	fmt.Printf("Connecting to //%s/%s as %s...\n",
		a.cfg.Server.Host, a.cfg.Server.Share, a.cfg.Server.Username)

	start := time.Now()
	lease, err := a.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	dial := time.Since(start)

	checkErr := func() error {
		if pinger, ok := lease.Backend.(storage.Pinger); ok {
			if err := pinger.Ping(ctx); err != nil {
				return fmt.Errorf("echo failed: %w", err)
			}
		}

		infos, err := lease.List(ctx, "")
		if err != nil {
			return fmt.Errorf("listing the share root failed: %w", err)
		}

		pdfs := 0
		for _, info := range infos {
			if !info.IsDir && isPDF(info.Path) {
				pdfs++
			}
		}

		fmt.Printf("Connected in %s\n", dial.Round(time.Millisecond))
		fmt.Printf("  Entries under root:   %d\n", len(infos))
		fmt.Printf("  PDF files:            %d\n", pdfs)
		fmt.Printf("  Timestamp resolution: %s\n", lease.Resolution())
		fmt.Printf("  Creation time writes: %s\n", supportedWord(lease.SupportsCreationTime()))
		return nil
	}()
	lease.Release(checkErr)
	if checkErr != nil {
		return checkErr
	}

	stats := a.pool.Stats()
	fmt.Printf("\nPool: size=%d acquires=%d failures=%d recycled=%d\n",
		stats.Size, stats.Acquires, stats.Failures, stats.Recycled)
	return nil
}

func supportedWord(ok bool) string {
	if ok {
		return "supported"
	}
	return "not supported"
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nasdate/pkg/models"
	"nasdate/pkg/transaction"
)

// setFlags holds flags for the set command
type setFlags struct {
	conn       ConnectionFlags
	setCreated bool
	jsonOut    bool
}

// NewSetCommand creates the set command
func NewSetCommand() *cobra.Command {
	flags := &setFlags{}

	cmd := &cobra.Command{
		Use:   "set <path> <date>",
		Short: "Set the modification date of one file",
		Long: `Set changes the modification timestamp of one file on the share.
The original timestamps are backed up first; the new value is written,
read back and verified, and on any failure the original timestamps are
restored. The date may be "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" and is
interpreted in local time.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, flags, args[0], args[1])
		},
	}

	AddConnectionFlags(cmd, &flags.conn)
	cmd.Flags().BoolVar(&flags.setCreated, "created", false, "also set the creation time where supported")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "output as JSON")

	return cmd
}

func runSet(cmd *cobra.Command, flags *setFlags, target, date string) error {
	path, err := resolveTarget(&flags.conn, target)
	if err != nil {
		return err
	}

	when, err := parseTimestamp(date)
	if err != nil {
		return err
	}

	a, err := newApp(&flags.conn)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.coordinator().Run(cmd.Context(), transaction.Request{
		Path:       path,
		Target:     when,
		SetCreated: flags.setCreated,
	})

	if flags.jsonOut {
		if err := printSetJSON(result); err != nil {
			return err
		}
	} else {
		printSet(result)
	}

	if !result.Committed() {
		// The failure was already printed; exit without a second message
		a.Close()
		if result.ManualIntervention {
			os.Exit(3)
		}
		os.Exit(1)
	}
	return nil
}

func printSet(result models.TransactionResult) {
	switch result.Outcome {
	case models.OutcomeCommitted:
		fmt.Printf("✓ %s → %s (verified, %d attempt(s), %s)\n",
			result.Path,
			result.Applied.Format("2006-01-02 15:04:05"),
			result.Attempts,
			result.Duration.Round(time.Millisecond))
	case models.OutcomeRolledBack:
		fmt.Printf("↩ %s rolled back to its original timestamps: %v\n", result.Path, result.Err)
	default:
		if result.ManualIntervention {
			fmt.Printf("‼ %s FAILED, MANUAL INTERVENTION REQUIRED: %v\n", result.Path, result.Err)
		} else {
			fmt.Printf("✗ %s: %v\n", result.Path, result.Err)
		}
	}
}

func printSetJSON(result models.TransactionResult) error {
	out := map[string]interface{}{
		"transaction":         result.ID,
		"path":                result.Path,
		"outcome":             string(result.Outcome),
		"attempts":            result.Attempts,
		"duration_ms":         result.Duration.Milliseconds(),
		"manual_intervention": result.ManualIntervention,
	}
	if result.Committed() {
		out["applied"] = result.Applied
	}
	if msg := result.ErrorMessage(); msg != "" {
		out["error"] = msg
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/nasdate/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// ConnectionFlags holds per-command share connection overrides
type ConnectionFlags struct {
	Host     string
	Port     int
	Share    string
	Domain   string
	Username string
	Password string
	BasePath string
}

// AddConnectionFlags registers the share connection overrides on cmd
func AddConnectionFlags(cmd *cobra.Command, flags *ConnectionFlags) {
	cmd.Flags().StringVar(&flags.Host, "host", "", "NAS host name or IP")
	cmd.Flags().IntVar(&flags.Port, "port", 0, "SMB port (default: 445)")
	cmd.Flags().StringVar(&flags.Share, "share", "", "share name")
	cmd.Flags().StringVar(&flags.Domain, "domain", "", "authentication domain")
	cmd.Flags().StringVar(&flags.Username, "username", "", "share username")
	cmd.Flags().StringVar(&flags.Password, "password", "", "share password (prefer NASDATE_PASSWORD)")
	cmd.Flags().StringVar(&flags.BasePath, "base-path", "", "path prefix on the share")
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"nasdate/internal/platform"
	"nasdate/pkg/config"
	"nasdate/pkg/logging"
	"nasdate/pkg/output"
	"nasdate/pkg/ratelimit"
	"nasdate/pkg/storage"
	"nasdate/pkg/transaction"
)

// app bundles the dependencies every command builds at startup
type app struct {
	cfg    *config.Config
	logger logging.Logger
	pool   *storage.Pool
}

// newApp loads configuration, applies connection overrides and opens the
// connection pool. The pool dials lazily, so this never touches the
// network by itself.
func newApp(conn *ConnectionFlags) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	applyConnectionFlags(cfg, conn)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Server.Host == "" {
		return nil, fmt.Errorf("no host configured: set --host, NASDATE_HOST or server.host in the config file")
	}
	if cfg.Server.Share == "" {
		return nil, fmt.Errorf("no share configured: set --share, NASDATE_SHARE or server.share in the config file")
	}

	if cfg.Server.Password == "" && cfg.Server.Username != "" {
		password, err := promptPassword(cfg.Server.Username, cfg.Server.Host)
		if err != nil {
			return nil, err
		}
		cfg.Server.Password = password
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	pool := storage.NewPool(smbFactory(cfg), storage.PoolConfig{
		Size:        cfg.Performance.PoolSize,
		MaxIdle:     cfg.Performance.MaxIdle(),
		HealthCheck: cfg.Performance.HealthCheck,
	})

	return &app{cfg: cfg, logger: logger, pool: pool}, nil
}

// Close releases the pool and the logger
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.logger != nil {
		a.logger.Close()
	}
}

// coordinator builds the transaction coordinator from the loaded config
func (a *app) coordinator() *transaction.Coordinator {
	backup := &transaction.BackupManager{
		Checksum: a.cfg.Backup.VerifyChecksums,
		Limiter:  ratelimit.NewLimiter(a.cfg.Performance.BandwidthLimit),
	}
	return transaction.NewCoordinator(a.pool, backup, transaction.CoordinatorConfig{
		Policy:      a.cfg.Performance.RetryPolicy(),
		CallTimeout: a.cfg.Performance.CallTimeout(),
	}, a.logger)
}

// loadConfig loads the config file named by --config, or the default
// location when the flag is unset
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyConnectionFlags lets per-command flags override the loaded config
func applyConnectionFlags(cfg *config.Config, conn *ConnectionFlags) {
	if conn == nil {
		return
	}
	if conn.Host != "" {
		cfg.Server.Host = conn.Host
	}
	if conn.Port != 0 {
		cfg.Server.Port = conn.Port
	}
	if conn.Share != "" {
		cfg.Server.Share = conn.Share
	}
	if conn.Domain != "" {
		cfg.Server.Domain = conn.Domain
	}
	if conn.Username != "" {
		cfg.Server.Username = conn.Username
	}
	if conn.Password != "" {
		cfg.Server.Password = conn.Password
	}
	if conn.BasePath != "" {
		cfg.Server.BasePath = conn.BasePath
	}
}

// smbFactory adapts the server config into the pool's dial function
func smbFactory(cfg *config.Config) storage.Factory {
	return func(ctx context.Context) (storage.Backend, error) {
		return storage.DialSMB(ctx, storage.SMBConfig{
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
			Share:       cfg.Server.Share,
			Username:    cfg.Server.Username,
			Password:    cfg.Server.Password,
			Domain:      cfg.Server.Domain,
			BasePath:    cfg.Server.BasePath,
			DialTimeout: cfg.Server.DialTimeout(),
			Resolution:  cfg.Server.Resolution(),
		})
	}
}

// newLogger creates the configured logger, or a null logger when file
// logging is disabled
func newLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled || cfg.Logging.File == "" {
		return logging.NewNullLogger(), nil
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if globalFlags.Verbose {
		level = logging.DebugLevel
	}

	return logging.NewFileLogger(logging.FileConfig{
		Path:   cfg.Logging.File,
		Format: logging.Format(cfg.Logging.Format),
		Level:  level,
	})
}

// newFormatter picks the output formatter from config and flags
func newFormatter(cfg *config.Config, jsonOut bool) output.Formatter {
	if jsonOut || cfg.Output.Format == "json" {
		return output.NewJSONFormatter()
	}
	if cfg.Output.Progress && !globalFlags.Quiet && !globalFlags.Verbose {
		return output.NewProgressFormatter()
	}
	return output.NewHumanFormatter()
}

// promptPassword asks for the share password on the terminal. Fails when
// stdin is not a terminal, so scripted runs must use NASDATE_PASSWORD.
func promptPassword(username, host string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("no password configured: set NASDATE_PASSWORD or the password config key")
	}

	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", username, host)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// timestampLayouts are the accepted forms of the target date argument
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp parses a user-supplied target date in local time. A
// date without a time component means midnight.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (expected e.g. \"2006-01-02 15:04:05\")", s)
}

// resolveTarget accepts either a share-relative path or a //host/share/path
// target. The UNC form overrides the configured host and share.
func resolveTarget(conn *ConnectionFlags, target string) (string, error) {
	if !platform.IsShareTarget(target) {
		return platform.NormalizeRemotePath(target), nil
	}

	host, share, relPath, err := platform.ParseShareTarget(target)
	if err != nil {
		return "", err
	}
	if conn.Host == "" {
		conn.Host = host
	}
	if conn.Share == "" {
		conn.Share = share
	}
	return platform.NormalizeRemotePath(relPath), nil
}

// isPDF matches by extension, case-insensitively
func isPDF(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

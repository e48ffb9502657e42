package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"fysics/internal/config"
	"fysics/internal/store"
	"fysics/internal/transport/rest"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FYSICS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var verbose bool

	cmd := &cobra.Command{
		Use:           "fysics",
		Short:         "Terminal client for Physics is Phun, a live host-driven trivia game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				cfg.LogLevel = "debug"
			}
			return cfg.Validate()
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "backend base URL (env: FYSICS_API_URL)")
	fs.StringVar(&cfg.WSURL, "ws-url", cfg.WSURL, "event channel origin, defaults to --api-url (env: FYSICS_WS_URL)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for local state (env: FYSICS_DATA_DIR)")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "session-status poll cadence (env: FYSICS_POLL_INTERVAL)")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request HTTP timeout (env: FYSICS_TIMEOUT)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error (env: FYSICS_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json (env: FYSICS_LOG_FORMAT)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		newLoginCmd(cfg),
		newHostCmd(cfg),
		newJoinCmd(cfg),
		newJuryCmd(cfg),
		newDeckCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("fysics v{{.Version}}\n")

	return cmd
}

// env bundles the pieces every command needs
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	client *rest.Client
}

func newEnv(cfg *config.Config) (*env, error) {
	logger := cfg.Logger(os.Stderr)

	st, err := store.Open(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}

	client := rest.NewClient(cfg.APIURL, logger,
		rest.WithTimeout(cfg.RequestTimeout),
		rest.WithCredential(st.HostCode),
		rest.WithWSBase(cfg.WSURL),
	)

	return &env{cfg: cfg, logger: logger, store: st, client: client}, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kangruixiang/curator/internal/config"
	"github.com/kangruixiang/curator/internal/curator"
	"github.com/kangruixiang/curator/internal/pocketbase"
)

var (
	configFile string
)

func main() {
	var debugMode bool
	rootCommand := cobra.Command{
		Use:           "curator",
		Short:         "Manage a curator notes library stored in PocketBase",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newBootstrapCommand(),
		newNotebookCommand(),
		newTagCommand(),
		newNoteCommand(),
		newSettingCommand(),
		newExportCommand(),
	)
	if err := rootCommand.Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

// setupLogger configures the default logger based on debug mode
func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func newClient(cfg config.PocketBaseConfig) *pocketbase.Client {
	var fts []string
	if cfg.FullTextSearch {
		fts = []string{curator.NotesCollection}
	}
	return pocketbase.NewClient(pocketbase.Config{
		BaseURL:        cfg.URL,
		PublicURL:      cfg.PublicURL,
		FTSCollections: fts,
	})
}

// session is a loaded config with an authenticated client. The context
// expires after the configured PocketBase timeout.
type session struct {
	cfg    *config.Config
	client *pocketbase.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *session) Close() {
	s.cancel()
	if err := s.client.Close(); err != nil {
		slog.Default().Warn("failed to close pocketbase client", slog.Any("error", err))
	}
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loadConfig() > %w", err)
	}

	client := newClient(cfg.PocketBase)
	var cancel context.CancelFunc
	if cfg.PocketBase.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.PocketBase.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	if err := client.AuthSuperuser(ctx, cfg.PocketBase.SuperuserEmail, cfg.PocketBase.SuperuserPassword); err != nil {
		cancel()
		_ = client.Close()
		return nil, fmt.Errorf("client.AuthSuperuser() > %w", err)
	}
	return &session{
		cfg:    cfg,
		client: client,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

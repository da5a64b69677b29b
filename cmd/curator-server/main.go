package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kangruixiang/curator/internal/bootstrap"
	"github.com/kangruixiang/curator/internal/config"
	"github.com/kangruixiang/curator/internal/curator"
	"github.com/kangruixiang/curator/internal/pocketbase"
	"github.com/kangruixiang/curator/internal/server"
	"github.com/kangruixiang/curator/internal/thumbnail"
)

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "curator-server",
		Short:         "Curator JSON API and realtime event server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	})))
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	client := newClient(cfg.PocketBase)
	app.AddCloser("pocketbase client", client)

	if err := curator.Bootstrap(ctx, client, client, curator.BootstrapConfig{
		Email:         cfg.PocketBase.SuperuserEmail,
		Password:      cfg.PocketBase.SuperuserPassword,
		HealthRetries: cfg.PocketBase.HealthRetries,
		HealthDelay:   cfg.PocketBase.HealthDelay,
	}); err != nil {
		return fmt.Errorf("curator.Bootstrap() > %w", err)
	}

	notebooks := curator.NewNotebookState(client)
	notebookWatch, err := notebooks.Watch(ctx, client)
	if err != nil {
		return fmt.Errorf("notebooks.Watch() > %w", err)
	}
	app.AddShutdownHook("notebook watch", func(context.Context) error {
		return notebookWatch.Stop()
	})

	tags := curator.NewTagState(client)
	tagWatch, err := tags.Watch(ctx, client)
	if err != nil {
		return fmt.Errorf("tags.Watch() > %w", err)
	}
	app.AddShutdownHook("tag watch", func(context.Context) error {
		return tagWatch.Stop()
	})

	hub := server.NewHub(cfg.Server.CORS.AllowedOrigins)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)
	app.AddShutdownHook("event hub", func(context.Context) error {
		stopHub()
		return nil
	})
	unforward, err := hub.Forward(ctx, client,
		curator.NotesCollection,
		curator.NotebooksCollection,
		curator.TagsCollection,
	)
	if err != nil {
		return fmt.Errorf("hub.Forward() > %w", err)
	}
	app.AddShutdownHook("event forwarding", unforward)

	thumbnails := thumbnail.NewGenerator(client, thumbnail.FFmpeg{Path: cfg.Thumbnail.FFmpegPath}, thumbnail.Config{
		Collection:  curator.NotesCollection,
		MinSize:     cfg.Thumbnail.MinSize,
		Size:        cfg.Thumbnail.Size,
		FrameOffset: cfg.Thumbnail.FrameOffset,
	})
	handler := server.NewHandler(client, client.PublicURL(), notebooks, tags, thumbnails, hub)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Wrap(h2c.NewHandler(handler.Routes(), &http2.Server{}), server.Options{
			PublicURL:      client.PublicURL(),
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		}),
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
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

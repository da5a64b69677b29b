package curator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/kangruixiang/curator/internal/pocketbase"
)

// Backend is the server-level API needed before records can be used.
type Backend interface {
	Health(ctx context.Context) error
	AuthSuperuser(ctx context.Context, email, password string) error
}

// BootstrapConfig controls how long Bootstrap waits for PocketBase.
type BootstrapConfig struct {
	Email         string
	Password      string
	HealthRetries uint
	HealthDelay   time.Duration
}

// Bootstrap waits for PocketBase to be healthy, authenticates as superuser
// and creates the records every installation needs: the Inbox notebook and
// the full-text index of notes. Records that already exist are left alone.
func Bootstrap(ctx context.Context, backend Backend, client pocketbase.RecordClient, cfg BootstrapConfig) error {
	if cfg.Email == "" {
		cfg.Email = DefaultSuperuserEmail
	}
	if cfg.Password == "" {
		cfg.Password = DefaultSuperuserPassword
	}
	if cfg.HealthRetries == 0 {
		cfg.HealthRetries = 30
	}
	if cfg.HealthDelay == 0 {
		cfg.HealthDelay = time.Second
	}

	if err := retry.Do(
		func() error {
			return backend.Health(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(cfg.HealthRetries),
		retry.Delay(cfg.HealthDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("waiting for pocketbase",
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err))
		}),
	); err != nil {
		return fmt.Errorf("backend.Health() > %w", err)
	}

	if err := backend.AuthSuperuser(ctx, cfg.Email, cfg.Password); err != nil {
		return fmt.Errorf("backend.AuthSuperuser(%s) > %w", cfg.Email, err)
	}

	// The Inbox and the full-text index are independent; a failure of one does not skip the other.
	return errors.Join(createInbox(ctx, client), registerFTS(ctx, client))
}

func createInbox(ctx context.Context, client pocketbase.RecordClient) error {
	if err := client.Create(ctx, NotebooksCollection, map[string]any{"name": InboxNotebook}, nil); err != nil {
		if !pocketbase.IsNotUnique(err, "name") {
			slog.Default().Error("failed to create the inbox", slog.Any("error", err))
			return fmt.Errorf("client.Create(%s, %s) > %w", NotebooksCollection, InboxNotebook, err)
		}
		slog.Default().Debug("inbox already exists")
	}
	return nil
}

func registerFTS(ctx context.Context, client pocketbase.RecordClient) error {
	if err := client.Create(ctx, FTSCollection, map[string]any{
		"collection": NotesCollection,
		"tokenizer":  "porter",
	}, nil); err != nil {
		if !pocketbase.IsNotUnique(err, "collection") {
			slog.Default().Error("failed to register the full-text index", slog.Any("error", err))
			return fmt.Errorf("client.Create(%s, %s) > %w", FTSCollection, NotesCollection, err)
		}
		slog.Default().Debug("full-text index already registered")
	}
	return nil
}

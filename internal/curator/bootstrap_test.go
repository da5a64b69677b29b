package curator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_pocketbase "github.com/kangruixiang/curator/internal/mocks/pocketbase"
	"github.com/kangruixiang/curator/internal/pocketbase"
)

type fakeBackend struct {
	unhealthy int
	healthErr error
	authErr   error

	healthCalls int
	email       string
	password    string
}

func (b *fakeBackend) Health(context.Context) error {
	b.healthCalls++
	if b.healthCalls <= b.unhealthy {
		return b.healthErr
	}
	return nil
}

func (b *fakeBackend) AuthSuperuser(_ context.Context, email, password string) error {
	b.email, b.password = email, password
	return b.authErr
}

func notUnique(field string) error {
	return &pocketbase.ResponseError{
		Status:  400,
		Message: "Failed to create record.",
		Data:    map[string]pocketbase.FieldError{field: {Code: pocketbase.CodeNotUnique, Message: "Value must be unique."}},
	}
}

func TestBootstrap(t *testing.T) {
	inboxBody := map[string]any{"name": "Inbox"}
	ftsBody := map[string]any{"collection": "notes", "tokenizer": "porter"}

	tests := []struct {
		name        string
		backend     *fakeBackend
		setup       func(client *mock_pocketbase.MockRecordClient)
		wantErr     bool
		wantErrs    []string
		wantHealths int
	}{
		{
			name:    "fresh install after the backend comes up",
			backend: &fakeBackend{unhealthy: 2, healthErr: errors.New("connection refused")},
			setup: func(client *mock_pocketbase.MockRecordClient) {
				client.EXPECT().Create(gomock.Any(), NotebooksCollection, inboxBody, nil).Return(nil)
				client.EXPECT().Create(gomock.Any(), FTSCollection, ftsBody, nil).Return(nil)
			},
			wantHealths: 3,
		},
		{
			name:    "existing records are benign",
			backend: &fakeBackend{},
			setup: func(client *mock_pocketbase.MockRecordClient) {
				client.EXPECT().Create(gomock.Any(), NotebooksCollection, inboxBody, nil).Return(notUnique("name"))
				client.EXPECT().Create(gomock.Any(), FTSCollection, ftsBody, nil).Return(notUnique("collection"))
			},
			wantHealths: 1,
		},
		{
			name:    "inbox failure still registers the full-text index",
			backend: &fakeBackend{},
			setup: func(client *mock_pocketbase.MockRecordClient) {
				client.EXPECT().Create(gomock.Any(), NotebooksCollection, inboxBody, nil).Return(notUnique("parent"))
				client.EXPECT().Create(gomock.Any(), FTSCollection, ftsBody, nil).Return(nil)
			},
			wantErr:     true,
			wantErrs:    []string{"client.Create(notebooks, Inbox)"},
			wantHealths: 1,
		},
		{
			name:    "both steps fail",
			backend: &fakeBackend{},
			setup: func(client *mock_pocketbase.MockRecordClient) {
				client.EXPECT().Create(gomock.Any(), NotebooksCollection, inboxBody, nil).Return(errors.New("connection reset"))
				client.EXPECT().Create(gomock.Any(), FTSCollection, ftsBody, nil).Return(errors.New("connection reset"))
			},
			wantErr:     true,
			wantErrs:    []string{"client.Create(notebooks, Inbox)", "client.Create(_fts, notes)"},
			wantHealths: 1,
		},
		{
			name:        "backend never becomes healthy",
			backend:     &fakeBackend{unhealthy: 100, healthErr: errors.New("connection refused")},
			setup:       func(client *mock_pocketbase.MockRecordClient) {},
			wantErr:     true,
			wantHealths: 3,
		},
		{
			name:        "authentication failure",
			backend:     &fakeBackend{authErr: errors.New("invalid credentials")},
			setup:       func(client *mock_pocketbase.MockRecordClient) {},
			wantErr:     true,
			wantHealths: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			tt.setup(client)

			err := Bootstrap(context.Background(), tt.backend, client, BootstrapConfig{
				HealthRetries: 3,
				HealthDelay:   time.Millisecond,
			})
			if tt.wantErr {
				assert.Error(t, err)
				for _, want := range tt.wantErrs {
					assert.ErrorContains(t, err, want)
				}
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantHealths, tt.backend.healthCalls)
			if tt.backend.healthCalls > tt.backend.unhealthy {
				assert.Equal(t, DefaultSuperuserEmail, tt.backend.email)
				assert.Equal(t, DefaultSuperuserPassword, tt.backend.password)
			}
		})
	}
}

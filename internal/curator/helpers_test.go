package curator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_pocketbase "github.com/kangruixiang/curator/internal/mocks/pocketbase"
)

// assign decodes v into dest through JSON, the way the record client fills responses.
func assign(t *testing.T, dest any, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, dest))
}

func newMockClient(t *testing.T) *mock_pocketbase.MockRecordClient {
	t.Helper()
	ctrl := gomock.NewController(t)
	return mock_pocketbase.NewMockRecordClient(ctrl)
}

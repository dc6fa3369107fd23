package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tauri-release/internal/domain/release"
	"github.com/oshokin/tauri-release/internal/service/common"
	"github.com/oshokin/tauri-release/internal/testutil"
)

// TestNewInvoker_Splits honors quoting in the configured command line.
func TestNewInvoker_Splits(t *testing.T) {
	t.Parallel()

	inv, err := NewInvoker(testutil.NewRecorder(), `npm run tauri build -- --config "src-tauri/release conf.json"`)
	require.NoError(t, err)
	require.Equal(t, []string{"npm", "run", "tauri", "build", "--", "--config", "src-tauri/release conf.json"}, inv.Argv())

	_, err = NewInvoker(testutil.NewRecorder(), "   ")
	require.ErrorIs(t, err, errEmptyCommand)

	_, err = NewInvoker(testutil.NewRecorder(), `npm "run`)
	require.Error(t, err)
}

// TestInvoke_ThreadsCredential passes the key through the child environment.
func TestInvoke_ThreadsCredential(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecorder()
	inv, err := NewInvoker(rec, "npm run build:win")
	require.NoError(t, err)

	require.NoError(t, inv.Invoke(context.Background(), release.NewCredential("key", "")))
	require.NoError(t, inv.Invoke(context.Background(), nil))

	calls := rec.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "npm run build:win", calls[0].Line)
	require.Contains(t, calls[0].Env, "TAURI_SIGNING_PRIVATE_KEY=key")
	require.Empty(t, calls[1].Env)
}

// TestInvoke_Failure surfaces a failing build as a command failure.
func TestInvoke_Failure(t *testing.T) {
	t.Parallel()

	inv, err := NewInvoker(testutil.NewRecorder().FailOn("npm", 1), "npm run build:win")
	require.NoError(t, err)

	require.ErrorIs(t, inv.Invoke(context.Background(), nil), common.ErrCommandFailed)
}

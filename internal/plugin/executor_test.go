package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return &Plugin{
		Manifest:   Manifest{Name: "script", Executable: "plugin.sh", Actions: []string{ActionMove}},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptPlugin(t, `#!/bin/sh
cat <<'EOF'
{"success":true,"data":{"message":"hello world"}}
EOF
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionMove})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.JSONEq(t, `{"message":"hello world"}`, string(resp.Data))
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	p := scriptPlugin(t, `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	params, _ := json.Marshal(PointParams{X: 12, Y: 34})
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionClick, Params: params})
	require.NoError(t, err)

	var data struct {
		Received Request `json:"received"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, ActionClick, data.Received.Action)
	assert.JSONEq(t, `{"x":12,"y":34}`, string(data.Received.Params))
}

func TestExecutor_Timeout(t *testing.T) {
	p := scriptPlugin(t, `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, &Request{Action: ActionMove})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExecutor_ContextCancelled(t *testing.T) {
	p := scriptPlugin(t, `#!/bin/sh
sleep 10
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(5*time.Second).Execute(ctx, p, &Request{Action: ActionMove})
	assert.Error(t, err)
}

func TestExecutor_ErrorResponse(t *testing.T) {
	p := scriptPlugin(t, `#!/bin/sh
echo '{"success":false,"error":"something went wrong"}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionMove})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestExecutor_NonZeroExit(t *testing.T) {
	p := scriptPlugin(t, `#!/bin/sh
echo "boom" >&2
exit 3
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionMove})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecutor_InvalidJSON(t *testing.T) {
	p := scriptPlugin(t, `#!/bin/sh
echo 'not json'
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: ActionMove})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse plugin response")
}

func TestNewExecutor_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewExecutor(0).timeout)
}

package cliutil_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchharness/benchjson/internal/cliutil"
)

type info struct {
	Version string `json:"version"`
	Commit  string `json:"git_commit"`
}

func outputCmd(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cliutil.AddOutputFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func TestHandleOutput(t *testing.T) {
	v := info{Version: "1.2.0", Commit: "abcd1234"}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"json", nil, "{\n  \"version\": \"1.2.0\",\n  \"git_commit\": \"abcd1234\"\n}\n"},
		{"yaml", []string{"--format", "yaml"}, "git_commit: abcd1234\nversion: 1.2.0\n"},
		{"template", []string{"--template", "{{.version}}@{{.git_commit}}"}, "1.2.0@abcd1234\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := outputCmd(t, tt.args...)
			require.NoError(t, cliutil.HandleOutput(cmd, v))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestHandleOutputBadTemplate(t *testing.T) {
	cmd, _ := outputCmd(t, "--template", "{{.version")
	err := cliutil.HandleOutput(cmd, info{})
	assert.ErrorContains(t, err, "failed to parse template")
}

func TestBindFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().String("results-root", "bench-results", "")
		return cmd
	}

	v := viper.New()
	cliutil.ConfigureEnv(v)
	cmd := newCmd()
	require.NoError(t, cliutil.BindFlags(v, cmd))
	assert.Equal(t, "bench-results", v.GetString("results-root"))

	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader("results-root: /config\n")))
	assert.Equal(t, "/config", v.GetString("results-root"))

	t.Setenv("BENCHJSON_RESULTS_ROOT", "/env")
	assert.Equal(t, "/env", v.GetString("results-root"))

	require.NoError(t, cmd.ParseFlags([]string{"--results-root", "/flag"}))
	assert.Equal(t, "/flag", v.GetString("results-root"))
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "BENCHJSON_LOG_LEVEL", cliutil.EnvName("log-level"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"SLURM_", "LAMELLAR_"}, cliutil.SplitList(" SLURM_, ,LAMELLAR_", nil))
	assert.Equal(t, []string{"lamellar"}, cliutil.SplitList("", []string{"lamellar"}))
}

func TestOpenInput(t *testing.T) {
	stdin := strings.NewReader("from stdin")
	r, err := cliutil.OpenInput("-", stdin)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))
	require.NoError(t, r.Close())

	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0644))
	r, err = cliutil.OpenInput(path, stdin)
	require.NoError(t, err)
	data, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "from file", string(data))
	require.NoError(t, r.Close())

	_, err = cliutil.OpenInput(filepath.Join(t.TempDir(), "missing"), stdin)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenOutput(t *testing.T) {
	var stdout bytes.Buffer
	w, err := cliutil.OpenOutput("", &stdout)
	require.NoError(t, err)
	_, err = io.WriteString(w, "line\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "line\n", stdout.String())

	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err = cliutil.OpenOutput(path, &stdout)
	require.NoError(t, err)
	_, err = io.WriteString(w, "{}\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, cliutil.IsTerminal(strings.NewReader("")))
}

func TestIsCleanExit(t *testing.T) {
	assert.True(t, cliutil.IsBrokenPipe(fmt.Errorf("write record: %w", &os.PathError{Op: "write", Path: "|1", Err: syscall.EPIPE})))
	assert.True(t, cliutil.IsCleanExit(fmt.Errorf("flush record: %w", io.ErrClosedPipe)))
	assert.True(t, cliutil.IsCleanExit(context.Canceled))
	assert.False(t, cliutil.IsCleanExit(errors.New("disk full")))
	assert.False(t, cliutil.IsCleanExit(nil))
}

func TestInterruptible(t *testing.T) {
	err := cliutil.Interruptible(context.Background(), func() error {
		return io.ErrUnexpectedEOF
	})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	ctx, cancel := context.WithCancel(context.Background())
	block := make(chan struct{})
	defer close(block)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err = cliutil.Interruptible(ctx, func() error {
		<-block
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

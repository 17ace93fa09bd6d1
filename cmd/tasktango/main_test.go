package main

import (
	"bytes"
	"context"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raisondetr3/tasktango/internal/config"
	apperrors "github.com/Raisondetr3/tasktango/internal/errors"
	"github.com/Raisondetr3/tasktango/internal/model"
	"github.com/Raisondetr3/tasktango/internal/repository"
	"github.com/Raisondetr3/tasktango/internal/service"
	"github.com/Raisondetr3/tasktango/internal/storage"
	grpcTransport "github.com/Raisondetr3/tasktango/internal/transport/grpc"
)

var shortIDPattern = regexp.MustCompile(`  ([0-9a-f]{8})`)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.ConfigFileEnv, "")
	t.Setenv("STORAGE_DRIVER", storage.DriverFile)
	t.Setenv("STORAGE_DIR", dir)
	t.Setenv("LOG_FILE_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_ENABLED", "false")
	return dir
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, newRootCmd(), args...)
}

// runAt runs the command with the store clock pinned to now.
func runAt(t *testing.T, now time.Time, args ...string) (string, error) {
	t.Helper()
	return execute(t, buildRootCmd(&rootOptions{clock: fixedClock{now: now}}), args...)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func extractID(t *testing.T, output string) string {
	t.Helper()
	m := shortIDPattern.FindStringSubmatch(output)
	require.Len(t, m, 2, output)
	return m[1]
}

func TestCLI_LocalWorkflow(t *testing.T) {
	setupEnv(t)

	morning := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.Local)

	out, err := runAt(t, morning, "add", "Buy", "milk", "--at", "09:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Added [ ] Buy milk (due 09:00)")
	milk := extractID(t, out)

	out, err = run(t, "add", "Write report")
	require.NoError(t, err)
	report := extractID(t, out)

	out, err = runAt(t, morning.Add(50*time.Minute), "done", milk)
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Buy milk")
	assert.Contains(t, out, "Well Done!")

	out, err = run(t, "points")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Points: 1")
	assert.Contains(t, out, "To do (1)")
	assert.Contains(t, out, "Completed (1)")

	out, err = run(t, "list", "--status", "incomplete")
	require.NoError(t, err)
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Buy milk")

	out, err = run(t, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed Tasks Cleared")

	out, err = run(t, "rm", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted [ ] Write report")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks yet.")

	// Points are carried by tasks, so clearing them removes the points too.
	out, err = run(t, "points")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestCLI_Errors(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "add", "   ")
	assert.Error(t, err)

	_, err = run(t, "add", "x", "--at", "25:00")
	assert.Error(t, err)

	_, err = run(t, "done", "deadbeef")
	assert.Error(t, err)

	_, err = run(t, "list", "--status", "soon")
	assert.Error(t, err)

	_, err = run(t, "done")
	assert.Error(t, err)
}

func TestCLI_EmptyIDPrefix(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "add", "Only task")
	require.NoError(t, err)

	for _, cmd := range []string{"done", "rm"} {
		_, err = run(t, cmd, " ")
		assert.ErrorIs(t, err, apperrors.ErrEmptyTaskID, cmd)
	}

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] Only task")
}

func TestCLI_UnknownDriver(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORAGE_DRIVER", "etcd")

	_, err := run(t, "list")
	assert.ErrorIs(t, err, storage.ErrUnknownDriver)
}

func TestCLI_RemoteMode(t *testing.T) {
	setupEnv(t)

	store := service.NewTaskStore(repository.NewTaskRepository(storage.NewMemoryStore(), repository.DefaultKey))
	store.Load(context.Background())
	srv := grpcTransport.NewGRPCServer(config.Default(), store)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	addr := lis.Addr().String()

	out, err := run(t, "--server", addr, "add", "Remote task")
	require.NoError(t, err)
	id := extractID(t, out)

	_, err = run(t, "--server", addr, "done", id)
	require.NoError(t, err)

	require.Len(t, store.Completed(), 1)
	assert.Equal(t, "Remote task", store.Completed()[0].Text)

	out, err = run(t, "--server", addr, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Remote task")
}

func TestFormatTask(t *testing.T) {
	due := time.Date(2024, time.May, 3, 9, 5, 0, 0, time.Local)

	assert.Equal(t, "[x] Buy milk (due 09:05) +1  abcdef12",
		formatTask(model.Task{ID: "abcdef1234", Text: "Buy milk", Completed: true, DueDate: &due, Points: 1}))
	assert.Equal(t, "[ ] Read  ab",
		formatTask(model.Task{ID: "ab", Text: "Read"}))
}

package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebase/internal/monitoring"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// a missing config file falls back to the seeded in-memory store
	args = append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"))
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutineCommand(t *testing.T) {
	out, err := run(t, "routine", "Goes to school at 7:30 AM. Returns at 3:00 PM.")
	require.NoError(t, err)
	assert.Equal(t, "15:00\n", out)

	out, err = run(t, "routine", "Morning walk at 7:00 AM.")
	require.NoError(t, err)
	assert.Equal(t, "none\n", out)
}

func TestDueCommand(t *testing.T) {
	out, err := run(t, "due", "--at", "08:20")
	require.NoError(t, err)
	assert.Contains(t, out, "08:30  Work Departure")
	assert.Contains(t, out, "Laptop Bag")

	out, err = run(t, "due", "--at", "12:00")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing due")

	_, err = run(t, "due", "--at", "lunch")
	assert.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	out, err := run(t, "history", "--user", "Leo")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Lunch Box")
	assert.Contains(t, lines[1], "School Bag")
}

func TestSeedRequiresDatabase(t *testing.T) {
	_, err := run(t, "seed")
	assert.Error(t, err)
}

func TestSeedSQLite(t *testing.T) {
	t.Setenv("HOMEBASE_DATABASE_DRIVER", "sqlite3")
	t.Setenv("HOMEBASE_DATABASE_URL", filepath.Join(t.TempDir(), "homebase.db"))

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded")

	out, err = run(t, "history")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)
}

func TestMetricsServerShutsDown(t *testing.T) {
	collector := monitoring.NewCollector(nil)
	srv := newMetricsServer(0, "/metrics", collector)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "homebase_")

	srv.Addr = "127.0.0.1:0"
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	shutdownServers(ctx, nil, srv)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server still running after shutdown")
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/platform/sqlstore"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "debug",
			ShutdownTimeout: 5 * time.Second,
			PublicURL:       "http://localhost:8080",
		},
		Store: config.StoreConfig{
			Backend:        backend,
			MaxOpenConns:   1,
			MigrateOnStart: true,
		},
		Seed: config.SeedConfig{Enabled: true},
	}
	if backend == config.BackendSQLite {
		cfg.Store.DatabaseURL = filepath.Join(t.TempDir(), "decks.db")
	}
	return cfg
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServeLifecycle(t *testing.T) {
	log, buf := logger.NewBufferLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApplication(ctx, testConfig(t, config.BackendMemory), log)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := fmt.Sprintf("http://%s", ln.Addr())

	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	status, body := get(t, base+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, body = get(t, base+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "first deck")

	status, body = get(t, base+"/assets/app.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "htmx")

	status, _ = get(t, base+"/decks/42")
	assert.Equal(t, http.StatusNotFound, status)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, buf.String(), "server shutdown completed")
}

func TestOpenStoreSQLite(t *testing.T) {
	log, buf := logger.NewBufferLogger()
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)

	s, db, err := openStore(ctx, cfg, log)
	require.NoError(t, err)
	require.NotNil(t, db)

	decks, err := s.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "first deck", decks[0].Name)
	assert.Len(t, decks[0].Cards, 3)

	_, err = s.DeleteDeck(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening never reseeds a database that has held decks.
	s, db, err = openStore(ctx, cfg, log)
	require.NoError(t, err)
	defer db.Close()

	decks, err = s.ListDecks(ctx)
	require.NoError(t, err)
	assert.Empty(t, decks)
	assert.Contains(t, buf.String(), `"seeded":false`)
}

func TestOpenStoreMemory(t *testing.T) {
	log, _ := logger.NewBufferLogger()
	cfg := testConfig(t, config.BackendMemory)
	cfg.Seed.Enabled = false

	s, db, err := openStore(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.Nil(t, db)

	decks, err := s.ListDecks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, decks)
}

func TestOpenStoreBadSeedFile(t *testing.T) {
	log, _ := logger.NewBufferLogger()
	cfg := testConfig(t, config.BackendMemory)
	cfg.Seed.File = filepath.Join(t.TempDir(), "missing.yaml")

	_, _, err := openStore(context.Background(), cfg, log)
	assert.Error(t, err)
}

func TestRunMigrations(t *testing.T) {
	log, _ := logger.NewBufferLogger()
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		err := runMigrations(ctx, testConfig(t, config.BackendMemory), sqlstore.MigrateUp, log)
		assert.ErrorIs(t, err, errNoDatabase)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t, config.BackendSQLite)
		for _, cmd := range []string{sqlstore.MigrateUp, sqlstore.MigrateStatus, sqlstore.MigrateVersion, sqlstore.MigrateReset} {
			require.NoError(t, runMigrations(ctx, cfg, cmd, log), cmd)
		}
	})
}

func writeConfigFile(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`server:
  log_level: error
store:
  backend: sqlite
  database_url: %q
`, dbPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMigrateCommand(t *testing.T) {
	configPath := writeConfigFile(t, filepath.Join(t.TempDir(), "cli.db"))

	t.Run("up", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--config", configPath, "--env-file", "", "migrate", "up"})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		assert.NoError(t, cmd.Execute())
	})

	t.Run("unknown command", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--config", configPath, "--env-file", "", "migrate", "sideways"})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		assert.ErrorContains(t, cmd.Execute(), "unknown migration command")
	})

	t.Run("missing config file", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "--env-file", "", "migrate", "up"})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		assert.ErrorContains(t, cmd.Execute(), "failed to load configuration")
	})
}

package main

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a sqlite file in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--database-file", filepath.Join(dir, "auth.db")}, args...))

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestClientAndAccountCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTH_PEPPER_FILE", filepath.Join(dir, "pepper"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, dir, "migrate")
	require.NoError(t, err)

	out, err = run(t, dir, "client", "create", "--name", "web", "--single-session")
	require.NoError(t, err)
	id := regexp.MustCompile(`client_id:\s+([0-9a-f]{32})`).FindStringSubmatch(out)
	require.Len(t, id, 2, out)
	assert.Regexp(t, `client_secret: \S{43}`, out)

	out, err = run(t, dir, "client", "create", "--name", "game", "--public")
	require.NoError(t, err)
	assert.Contains(t, out, "(public client)")

	_, err = run(t, dir, "client", "create", "--name", "dup", "--id", id[1])
	require.Error(t, err)

	out, err = run(t, dir, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id[1])
	assert.Contains(t, out, "game")

	out, err = run(t, dir, "account", "create", "--username", "player1", "--password", "correct-horse")
	require.NoError(t, err)
	assert.Regexp(t, `account_id: [0-9a-f]{32}`, out)

	_, err = run(t, dir, "account", "create", "--username", "player1", "--password", "correct-horse")
	require.Error(t, err)

	_, err = run(t, dir, "client", "delete", id[1])
	require.NoError(t, err)
	_, err = run(t, dir, "client", "delete", id[1])
	require.Error(t, err)
}

func TestServeRejectsBadConfig(t *testing.T) {
	t.Setenv("AUTH_DATABASE_DRIVER", "mysql")

	_, err := run(t, t.TempDir(), "serve")
	require.Error(t, err)
}

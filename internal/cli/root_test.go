package cli

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite-gym/ignitegym/internal/cli/client"
	"github.com/ignite-gym/ignitegym/internal/cli/commands"
	"github.com/ignite-gym/ignitegym/internal/cli/config"
	"github.com/ignite-gym/ignitegym/internal/cli/forms"
	"github.com/ignite-gym/ignitegym/internal/cli/session"
	"github.com/ignite-gym/ignitegym/internal/cli/storage"
)

func TestRootCmd_Version(t *testing.T) {
	root := NewRootCmd(&commands.App{})

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "gym version dev\n", out.String())
}

func TestRootCmd_UsesWiredApp(t *testing.T) {
	api := client.New("http://127.0.0.1:1")
	out := &bytes.Buffer{}
	app := &commands.App{
		API:     api,
		Session: session.Open(context.Background(), api, storage.NewMemoryStore()),
		Forms:   forms.New(),
		Out:     out,
		In:      bufio.NewReader(strings.NewReader("")),
	}
	defer app.Close()

	root := NewRootCmd(app)
	root.SetArgs([]string{"whoami"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "Not signed in.\n", out.String())
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	root := NewRootCmd(&commands.App{})

	for _, name := range []string{"signup", "login", "logout", "whoami", "profile", "avatar", "groups", "exercises", "exercise", "done", "history", "config", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCmd_ConfigSetSkipsSession(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvConfigDir, dir)
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvTokenStore, "")
	t.Setenv(config.EnvLogLevel, "")
	// A broken saved URL must still be fixable
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(`{"api_url":"nope"}`), 0o600))

	app := &commands.App{}
	root := NewRootCmd(app)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"config", "set", "api-url", "https://gym.example.com"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Nil(t, app.Session, "config must not open a session")
	assert.Contains(t, out.String(), "✓ Saved api-url = https://gym.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://gym.example.com", cfg.APIURL)
}

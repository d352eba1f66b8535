package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/ignite-gym/ignitegym/internal/cli/client"
	"github.com/ignite-gym/ignitegym/internal/cli/config"
	"github.com/ignite-gym/ignitegym/internal/cli/forms"
	"github.com/ignite-gym/ignitegym/internal/cli/session"
	"github.com/ignite-gym/ignitegym/internal/cli/storage"
	"github.com/ignite-gym/ignitegym/internal/logger"
)

// ErrNotSignedIn is returned by commands that need a session
var ErrNotSignedIn = errors.New("not signed in. Please run 'gym login' first")

// App bundles what every command needs. Bootstrap fills it from the user's
// configuration; tests build it by hand.
type App struct {
	Config  *config.Config
	API     *client.Client
	Session *session.Store
	Forms   *forms.Validator
	Log     zerolog.Logger

	Out io.Writer
	In  *bufio.Reader

	// ReadPassword reads a secret without echo. When nil, the terminal is
	// used if stdin is one, otherwise a plain line is read from In.
	ReadPassword func(prompt string) (string, error)
}

// Bootstrap loads the configuration, builds the API client and the storage
// backends, and opens the session store (which restores any saved session).
// apiURL and logLevel override the configuration when non-empty.
func (a *App) Bootstrap(ctx context.Context, apiURL, logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.Config = cfg

	logger.InitWithWriter(cfg.LogLevel, "console", os.Stderr)
	a.Log = logger.GetLogger()

	a.API = client.New(cfg.APIURL)
	a.Session = session.Open(ctx, a.API, newSessionStorage(cfg), session.WithLogger(a.Log))
	a.ensureDefaults()

	a.Log.Debug().
		Str("api_url", cfg.APIURL).
		Str("state", a.Session.Snapshot().State.String()).
		Msg("Session opened")
	return nil
}

// newSessionStorage keeps the user record in the API host's session file and
// the token either in the OS keychain (scoped to the same host) or in that file.
func newSessionStorage(cfg *config.Config) storage.Store {
	file := storage.NewFileStore(cfg.SessionFile())
	router := storage.NewRouter(file)
	if cfg.TokenStore == config.TokenStoreKeyring {
		router.Route(storage.KeyToken, storage.NewKeyringStore(storage.DefaultKeyringService, cfg.Scope()))
	}
	return router
}

func (a *App) ensureDefaults() {
	if a.Forms == nil {
		a.Forms = forms.New()
	}
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.In == nil {
		a.In = bufio.NewReader(os.Stdin)
	}
}

// Close disposes the session store
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Close()
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.Out, args...)
}

// requireUser returns the signed in user or ErrNotSignedIn
func (a *App) requireUser() (*client.User, error) {
	snap := a.Session.Snapshot()
	if snap.State != session.StateAuthenticated || snap.User == nil {
		return nil, ErrNotSignedIn
	}
	return snap.User, nil
}

// prompt asks for a single line of text
func (a *App) prompt(label string) (string, error) {
	a.printf("%s: ", label)
	line, err := a.In.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword asks for a secret without echo when possible
func (a *App) promptPassword(label string) (string, error) {
	if a.ReadPassword != nil {
		return a.ReadPassword(label)
	}

	// Check if stdin is a terminal (not piped)
	if term.IsTerminal(int(syscall.Stdin)) {
		a.printf("%s: ", label)
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		a.println() // New line after password input
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(bytePassword), nil
	}

	return a.prompt(label)
}

// fallbackMessage is shown for failures without a backend message
const fallbackMessage = "Could not complete the request. Please try again later."

// UserMessage turns an error into the text shown to the user: the backend
// message for API errors, a generic message for transport failures, and the
// error itself otherwise.
func UserMessage(err error) string {
	if appErr, ok := client.IsAppError(err); ok {
		return appErr.Message
	}

	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return fallbackMessage
	}

	return err.Error()
}

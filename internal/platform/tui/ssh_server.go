package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tri-runner/internal/core"
	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

// SSHServerConfig configures the race server.
type SSHServerConfig struct {
	Address     string // host:port, e.g. ":23234"
	HostKeyPath string // generated under ~/.trirunner when empty
	DBPath      string // runs database shared by all sessions
	IdleTimeout time.Duration

	// Logger is optional; a stderr logger is created when nil.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns the address, database and timeout used by
// `trirunner serve` without flags.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.trirunner/runs.db",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer serves races over SSH. Every session races its own engine and
// all sessions share one leaderboard.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer opens the runs database and prepares the wish server. A
// database that cannot be opened only disables result storage.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "trirunner-ssh",
		})
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("runs will not be stored", "db", cfg.DBPath, "error", err)
	}

	keyPath, err := hostKeyPath(cfg.HostKeyPath)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	srv := &SSHServer{config: cfg, store: store, logger: logger}
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(keyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// hostKeyPath resolves the host key location and creates its directory.
func hostKeyPath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, ".trirunner", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create host key directory: %w", err)
	}
	return path, nil
}

func closeStore(store *storage.Store) {
	if store != nil {
		store.Close()
	}
}

// teaHandler starts a course picker sized to the session's PTY.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: core.DefaultConfig().TickRate,
	}
	return NewSessionModel(s.store, cfg, sess.User(), s.logger), []tea.ProgramOption{tea.WithAltScreen()}
}

func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		remote := sess.RemoteAddr().String()
		s.logger.Info("session started", "user", sess.User(), "remote", remote)
		next(sess)
		s.logger.Info("session ended", "user", sess.User(), "remote", remote)
	}
}

// ListenAndServe serves until SIGINT or SIGTERM, then shuts down.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down")
	return s.Shutdown()
}

// Shutdown closes the database and waits up to 10s for sessions to end.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closeStore(s.store)
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// Store returns the runs database, or nil when it could not be opened.
func (s *SSHServer) Store() *storage.Store {
	return s.store
}

// SessionModel is one SSH player's flow: pick a course, race it, and come
// back to the picker when the run is left with Back.
type SessionModel struct {
	store    *storage.Store
	config   core.RuntimeConfig
	username string
	logger   *log.Logger

	menu     MenuModel
	run      *Model // nil while the picker is shown
	quitting bool
}

// NewSessionModel creates a session that starts at the course picker.
func NewSessionModel(store *storage.Store, cfg core.RuntimeConfig, username string, logger *log.Logger) SessionModel {
	return SessionModel{
		store:    store,
		config:   cfg,
		username: username,
		logger:   logger,
		menu:     NewMenuModel(store, cfg),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active run or to the picker.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}
	if m.run != nil {
		return m.updateRun(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Ticks of a run that was left still arrive here.
	switch msg.(type) {
	case TickMsg, SecondMsg:
		return m, nil
	}

	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		// The leaderboard is its own program; the session keeps the picker.
		m.menu = NewMenuModel(m.store, m.config)
		return m, nil

	case m.menu.Selected() != nil:
		return m.startRun(m.menu.Selected().CourseID)
	}
	return m, cmd
}

// startRun creates a fresh game and run model for courseID.
func (m SessionModel) startRun(courseID string) (tea.Model, tea.Cmd) {
	game, err := registry.Create(courseID)
	if err != nil {
		m.logger.Warn("course unavailable", "user", m.username, "course", courseID, "error", err)
		m.menu = NewMenuModel(m.store, m.config)
		return m, nil
	}

	m.config = m.menu.Config()
	m.config.Seed = time.Now().UnixNano()
	m.logger.Info("run started", "user", m.username, "course", courseID, "seed", m.config.Seed)

	run := NewModel(game, m.store, m.config, RunOptions{Logger: m.logger})
	run.embedded = true
	m.run = &run
	return m, m.run.Init()
}

func (m SessionModel) updateRun(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.run.Update(msg)
	if run, ok := next.(Model); ok {
		m.run = &run
	}

	switch {
	case m.run.BackToMenu():
		st := m.run.State()
		m.logger.Info("run left", "user", m.username, "course", m.run.game.ID(),
			"distance", fmt.Sprintf("%.0fm", st.Distance), "won", st.Won)
		m.run = nil
		m.menu = NewMenuModel(m.store, m.config)
		return m, m.menu.Init()

	case m.run.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

// View renders the active run or the picker.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	if m.run != nil {
		return m.run.View()
	}
	return m.menu.View()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/api"
	"github.com/vovakirdan/tri-runner/internal/games/triathlon"
	"github.com/vovakirdan/tri-runner/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagHTTPAddr    string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that lets users connect and race.

Each SSH connection gets its own session with a course picker menu.
Runs are stored per-server (all users share the same leaderboard).
With --http, a read-only JSON API serves courses, phases and runs.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.trirunner/host_key

Examples:
  trirunner serve                           # Listen on :23234 with auto-generated key
  trirunner serve --ssh :2222               # Listen on port 2222
  trirunner serve --host-key ./my_host_key  # Use specific host key
  trirunner serve --http :8080              # Also serve the JSON API

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	def := tui.DefaultSSHServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", def.Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP API address (disabled when empty)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", int(def.IdleTimeout/time.Minute), "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Logger:      logger,
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	var httpSrv *http.Server
	if flagHTTPAddr != "" {
		if server.Store() == nil {
			logger.Warn("HTTP API disabled without a runs database")
		} else {
			httpSrv = &http.Server{
				Addr:              flagHTTPAddr,
				Handler:           api.NewServer(server.Store(), triathlon.LoadCourse, logger).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				logger.Info("starting HTTP API", "address", flagHTTPAddr)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP API error", "error", err)
				}
			}()
		}
	}

	fmt.Printf("Starting tri-runner SSH server on %s\n", cfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(cfg.Address))
	fmt.Println("Press Ctrl+C to stop")

	serveErr := server.ListenAndServe()

	if httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			logger.Warn("HTTP API shutdown", "error", err)
		}
	}
	if serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}
	return nil
}

// portOf returns the port part of a listen address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}

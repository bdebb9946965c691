// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"kurso/internal/config"
	"kurso/internal/issue"
	"kurso/internal/server"
	"kurso/internal/sshserver"
	"kurso/pkg/types"
)

var (
	serveAddr    string
	serveSSH     bool
	serveSSHAddr string
	serveDB      string

	serveCmd = &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the built site with live rebuilds",
		Long: `Build the course and serve it over HTTP. Changes to the course tree
trigger a debounced rebuild, and connected browsers reload. Prometheus
metrics are exposed at /metrics.

With --ssh, a wish server additionally offers the study TUI to SSH
clients; the SSH user name identifies the learner in the shared
progress store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), courseDirArg(args))
		},
	}
)

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "HTTP listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveSSH, "ssh", false, "also serve the study TUI over SSH")
	serveCmd.Flags().StringVar(&serveSSHAddr, "ssh-addr", "", "SSH listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "progress database path for SSH sessions")
}

func runServe(ctx context.Context, dir string) error {
	cfg := effectiveConfig()

	addr := types.ListenAddr(serveAddr)
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	if addr == "" {
		addr = config.DefaultConfig().Serve.Addr
	}

	srv, err := server.New(server.Options{
		Addr:       addr,
		CourseDir:  dir,
		LiveReload: cfg.Serve.LiveReload,
		Metrics:    cfg.Serve.Metrics,
		Version:    getVersionString(),
		Logger:     log.Default(),
	})
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return serveStartError(err)
	}
	defer func() { _ = srv.Stop() }()
	fmt.Printf("%s Serving course at %s\n",
		SuccessStyle.Render("✓"), PathStyle.Render("http://"+srv.Address()))

	var sshErrCh <-chan error
	if serveSSH || cfg.SSH.Enabled {
		ssh, err := startSSH(ctx, dir)
		if err != nil {
			return err
		}
		defer func() { _ = ssh.Stop() }()
		fmt.Printf("%s Study over SSH at %s\n",
			SuccessStyle.Render("✓"), PathStyle.Render("ssh://"+ssh.Addr()))
		sshErrCh = ssh.Err()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-srv.Err():
		return serveStartError(err)
	case err := <-sshErrCh:
		return serveStartError(err)
	}
}

// startSSH brings up the wish server sharing the HTTP server's course and
// the progress store.
func startSSH(ctx context.Context, dir string) (*sshserver.Server, error) {
	cfg := effectiveConfig()

	c, err := discoverCourse(ctx, dir)
	if err != nil {
		return nil, err
	}
	store, err := openProgressStore(ctx, serveDB)
	if err != nil {
		return nil, err
	}

	addr := types.ListenAddr(serveSSHAddr)
	if addr == "" {
		addr = cfg.SSH.Addr
	}
	if addr == "" {
		addr = config.DefaultConfig().SSH.Addr
	}
	hostKey := cfg.SSH.HostKeyPath.String()
	if hostKey == "" {
		hostKey, err = config.DefaultHostKeyPath()
		if err != nil {
			return nil, issue.WrapWithOperation(err, "resolve ssh host key path")
		}
	}

	ssh, err := sshserver.New(sshserver.Config{
		Addr:        addr,
		HostKeyPath: hostKey,
		Course:      c,
		Store:       store,
		Theme:       previewThemeFromConfig(),
		Logger:      log.Default(),
	})
	if err != nil {
		return nil, err
	}
	if err := ssh.Start(ctx); err != nil {
		return nil, serveStartError(err)
	}
	return ssh, nil
}

// serveStartError renders the address-in-use card when that is what
// happened; other failures pass through wrapped.
func serveStartError(err error) error {
	if errors.Is(err, syscall.EADDRINUSE) {
		if rendered, renderErr := issue.Get(issue.AddressInUseId).Render("dark"); renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
	}
	return issue.WrapWithOperation(err, "serve course")
}

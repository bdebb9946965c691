// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"kurso/internal/course"
	"kurso/internal/progress"
	"kurso/pkg/types"
)

const (
	// StateCreated indicates the server has been created but not started.
	StateCreated ServerState = iota
	// StateStarting indicates the server is in the process of starting.
	StateStarting
	// StateRunning indicates the server is accepting connections.
	StateRunning
	// StateStopping indicates the server is shutting down.
	StateStopping
	// StateStopped indicates the server has stopped (terminal state).
	StateStopped
	// StateFailed indicates the server failed to start or hit a fatal
	// error (terminal state).
	StateFailed
)

var (
	// ErrInvalidSSHConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidSSHConfig = errors.New("invalid ssh server config")
	// ErrServerNotRunning is returned by Stop when the server never ran.
	ErrServerNotRunning = errors.New("ssh server is not running")
	// ErrServerAlreadyStarted is returned by Start on reuse. A Server is
	// single-use: once stopped or failed, create a new instance.
	ErrServerAlreadyStarted = errors.New("ssh server already started")
)

type (
	// ServerState is the lifecycle state of the server.
	ServerState int32

	// Config configures the SSH study server.
	Config struct {
		// Addr is the listen address in "host:port" form. An empty port
		// picks a free one.
		Addr types.ListenAddr
		// HostKeyPath is where the host key lives; a missing key is
		// generated on first start.
		HostKeyPath string
		// Course is the discovered course served to every session.
		Course *course.Course
		// Store persists per-learner progress. Nil disables persistence.
		Store *progress.Store
		// Theme is the glamour style for lesson rendering. Empty
		// auto-detects per session.
		Theme string
		// Logger receives connection logs; nil uses the default.
		Logger *log.Logger
	}

	// InvalidConfigError is returned when a Config has invalid fields. It
	// wraps ErrInvalidSSHConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// String returns a human-readable state name.
func (s ServerState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Validate returns an error when the config cannot produce a server.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("listen address is required"))
	} else if err := c.Addr.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.HostKeyPath) == "" {
		errs = append(errs, fmt.Errorf("host key path is required"))
	}
	if c.Course == nil {
		errs = append(errs, fmt.Errorf("course is required"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid ssh server config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidSSHConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidSSHConfig }

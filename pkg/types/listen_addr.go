// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInvalidListenAddr is the sentinel error wrapped by InvalidListenAddrError.
var ErrInvalidListenAddr = errors.New("invalid listen address")

type (
	// ListenAddr represents a TCP listen address in "host:port" form.
	// The host part may be empty (listen on all interfaces), the port part
	// must be present. The zero value ("") is invalid.
	ListenAddr string

	// InvalidListenAddrError is returned when a ListenAddr value is empty
	// or does not parse as "host:port".
	InvalidListenAddrError struct {
		Value ListenAddr
		Cause error
	}
)

// String returns the string representation of the ListenAddr.
func (a ListenAddr) String() string { return string(a) }

// Host returns the host part of the address, or "" if the address is invalid.
func (a ListenAddr) Host() string {
	host, _, err := net.SplitHostPort(string(a))
	if err != nil {
		return ""
	}
	return host
}

// Port returns the port part of the address, or "" if the address is invalid.
func (a ListenAddr) Port() string {
	_, port, err := net.SplitHostPort(string(a))
	if err != nil {
		return ""
	}
	return port
}

// Validate returns an error if the ListenAddr is empty or does not parse
// as "host:port".
func (a ListenAddr) Validate() error {
	if strings.TrimSpace(string(a)) == "" {
		return &InvalidListenAddrError{Value: a}
	}
	if _, _, err := net.SplitHostPort(string(a)); err != nil {
		return &InvalidListenAddrError{Value: a, Cause: err}
	}
	return nil
}

// Error implements the error interface for InvalidListenAddrError.
func (e *InvalidListenAddrError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid listen address %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid listen address %q: must be \"host:port\"", e.Value)
}

// Unwrap returns ErrInvalidListenAddr for errors.Is() compatibility.
func (e *InvalidListenAddrError) Unwrap() error { return ErrInvalidListenAddr }

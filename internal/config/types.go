// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"kurso/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// FailOnError makes lint exit non-zero only for error findings.
	FailOnError FailLevel = "error"
	// FailOnWarning makes lint exit non-zero for warnings too.
	FailOnWarning FailLevel = "warning"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidFailLevel is returned when a FailLevel value is not recognized.
	ErrInvalidFailLevel = errors.New("invalid fail level")
	// ErrInvalidDBFilePath is returned when a DBFilePath value is whitespace-only.
	ErrInvalidDBFilePath = errors.New("invalid database file path")
	// ErrInvalidHostKeyPath is returned when a HostKeyPath value is whitespace-only.
	ErrInvalidHostKeyPath = errors.New("invalid host key path")
	// ErrInvalidLintConfig is the sentinel error wrapped by InvalidLintConfigError.
	ErrInvalidLintConfig = errors.New("invalid lint config")
	// ErrInvalidServeConfig is the sentinel error wrapped by InvalidServeConfigError.
	ErrInvalidServeConfig = errors.New("invalid serve config")
	// ErrInvalidSSHConfig is the sentinel error wrapped by InvalidSSHConfigError.
	ErrInvalidSSHConfig = errors.New("invalid ssh config")
	// ErrInvalidProgressConfig is the sentinel error wrapped by InvalidProgressConfigError.
	ErrInvalidProgressConfig = errors.New("invalid progress config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// FailLevel specifies the lowest diagnostic severity that makes lint
	// (and strict builds) exit non-zero.
	FailLevel string

	// InvalidFailLevelError is returned when a FailLevel value is not recognized.
	// It wraps ErrInvalidFailLevel for errors.Is() compatibility.
	InvalidFailLevelError struct {
		Value FailLevel
	}

	// DBFilePath represents a filesystem path to the progress database.
	// The zero value ("") is valid and means "use the default data directory".
	// Non-zero values must not be whitespace-only.
	DBFilePath string

	// InvalidDBFilePathError is returned when a DBFilePath value is
	// non-empty but whitespace-only.
	InvalidDBFilePathError struct {
		Value DBFilePath
	}

	// HostKeyPath represents a filesystem path to the SSH host key.
	// The zero value ("") is valid and means "generate under the config dir".
	// Non-zero values must not be whitespace-only.
	HostKeyPath string

	// InvalidHostKeyPathError is returned when a HostKeyPath value is
	// non-empty but whitespace-only.
	InvalidHostKeyPathError struct {
		Value HostKeyPath
	}

	// InvalidLintConfigError is returned when a LintConfig has invalid fields.
	// It wraps ErrInvalidLintConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidLintConfigError struct {
		FieldErrors []error
	}

	// InvalidServeConfigError is returned when a ServeConfig has invalid fields.
	// It wraps ErrInvalidServeConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidServeConfigError struct {
		FieldErrors []error
	}

	// InvalidSSHConfigError is returned when an SSHConfig has invalid fields.
	// It wraps ErrInvalidSSHConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidSSHConfigError struct {
		FieldErrors []error
	}

	// InvalidProgressConfigError is returned when a ProgressConfig has invalid fields.
	// It wraps ErrInvalidProgressConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidProgressConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Lint configures linter behavior.
		Lint LintConfig `json:"lint" mapstructure:"lint"`
		// Serve configures the HTTP preview server.
		Serve ServeConfig `json:"serve" mapstructure:"serve"`
		// SSH configures the SSH study server.
		SSH SSHConfig `json:"ssh" mapstructure:"ssh"`
		// Progress configures the local progress store.
		Progress ProgressConfig `json:"progress" mapstructure:"progress"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// LintConfig configures linter behavior.
	LintConfig struct {
		// FailOn sets the lowest severity that causes a non-zero exit.
		FailOn FailLevel `json:"fail_on" mapstructure:"fail_on"`
	}

	// ServeConfig configures the HTTP preview server.
	ServeConfig struct {
		// Addr is the listen address in "host:port" form.
		Addr types.ListenAddr `json:"addr" mapstructure:"addr"`
		// LiveReload enables browser auto-refresh on rebuilds.
		LiveReload bool `json:"live_reload" mapstructure:"live_reload"`
		// Metrics exposes Prometheus metrics at /metrics.
		Metrics bool `json:"metrics" mapstructure:"metrics"`
	}

	// SSHConfig configures the SSH study server.
	SSHConfig struct {
		// Enabled starts the SSH listener alongside the HTTP server.
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// Addr is the listen address in "host:port" form.
		Addr types.ListenAddr `json:"addr" mapstructure:"addr"`
		// HostKeyPath overrides where the server host key is stored.
		HostKeyPath HostKeyPath `json:"host_key_path" mapstructure:"host_key_path"`
	}

	// ProgressConfig configures the local progress store.
	ProgressConfig struct {
		// DBPath overrides the progress database location.
		DBPath DBFilePath `json:"db_path" mapstructure:"db_path"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Interactive enables alternate screen buffer mode for the study TUI
		Interactive bool `json:"interactive" mapstructure:"interactive"`
	}
)

// IsValid returns whether the LintConfig has valid fields.
// It delegates to FailOn.IsValid(); there are no other fields.
func (c LintConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.FailOn.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidLintConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidLintConfigError.
func (e *InvalidLintConfigError) Error() string {
	return fmt.Sprintf("invalid lint config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLintConfig for errors.Is() compatibility.
func (e *InvalidLintConfigError) Unwrap() error { return ErrInvalidLintConfig }

// IsValid returns whether the ServeConfig has valid fields.
// It delegates to Addr.Validate(); bool fields need no validation.
func (c ServeConfig) IsValid() (bool, []error) {
	var errs []error
	if err := c.Addr.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidServeConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidServeConfigError.
func (e *InvalidServeConfigError) Error() string {
	return fmt.Sprintf("invalid serve config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidServeConfig for errors.Is() compatibility.
func (e *InvalidServeConfigError) Unwrap() error { return ErrInvalidServeConfig }

// IsValid returns whether the SSHConfig has valid fields.
// It delegates to Addr.Validate() and HostKeyPath.IsValid(). The address is
// validated even when the listener is disabled so a bad value surfaces early.
func (c SSHConfig) IsValid() (bool, []error) {
	var errs []error
	if err := c.Addr.Validate(); err != nil {
		errs = append(errs, err)
	}
	if valid, fieldErrs := c.HostKeyPath.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidSSHConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSSHConfigError.
func (e *InvalidSSHConfigError) Error() string {
	return fmt.Sprintf("invalid ssh config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidSSHConfig for errors.Is() compatibility.
func (e *InvalidSSHConfigError) Unwrap() error { return ErrInvalidSSHConfig }

// IsValid returns whether the ProgressConfig has valid fields.
// It delegates to DBPath.IsValid().
func (c ProgressConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.DBPath.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidProgressConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidProgressConfigError.
func (e *InvalidProgressConfigError) Error() string {
	return fmt.Sprintf("invalid progress config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidProgressConfig for errors.Is() compatibility.
func (e *InvalidProgressConfigError) Unwrap() error { return ErrInvalidProgressConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to each sub-config's IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Lint.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Serve.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.SSH.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Progress.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the DBFilePath.
func (p DBFilePath) String() string { return string(p) }

// IsValid returns whether the DBFilePath is valid.
// The zero value ("") is valid (means "use the default data directory").
// Non-zero values must not be whitespace-only.
func (p DBFilePath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidDBFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDBFilePathError.
func (e *InvalidDBFilePathError) Error() string {
	return fmt.Sprintf("invalid database file path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidDBFilePath for errors.Is() compatibility.
func (e *InvalidDBFilePathError) Unwrap() error { return ErrInvalidDBFilePath }

// String returns the string representation of the HostKeyPath.
func (p HostKeyPath) String() string { return string(p) }

// IsValid returns whether the HostKeyPath is valid.
// The zero value ("") is valid (means "generate under the config dir").
// Non-zero values must not be whitespace-only.
func (p HostKeyPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidHostKeyPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidHostKeyPathError.
func (e *InvalidHostKeyPathError) Error() string {
	return fmt.Sprintf("invalid host key path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidHostKeyPath for errors.Is() compatibility.
func (e *InvalidHostKeyPathError) Unwrap() error { return ErrInvalidHostKeyPath }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidFailLevelError.
func (e *InvalidFailLevelError) Error() string {
	return fmt.Sprintf("invalid fail level %q (valid: error, warning)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidFailLevelError) Unwrap() error {
	return ErrInvalidFailLevel
}

// String returns the string representation of the FailLevel.
func (f FailLevel) String() string { return string(f) }

// IsValid returns whether the FailLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (f FailLevel) IsValid() (bool, []error) {
	switch f {
	case FailOnError, FailOnWarning:
		return true, nil
	default:
		return false, []error{&InvalidFailLevelError{Value: f}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Lint: LintConfig{
			FailOn: FailOnError,
		},
		Serve: ServeConfig{
			Addr:       "127.0.0.1:8765",
			LiveReload: true,
			Metrics:    true,
		},
		SSH: SSHConfig{
			Enabled:     false,
			Addr:        "127.0.0.1:23234",
			HostKeyPath: "", // Will be generated under the config dir if empty
		},
		Progress: ProgressConfig{
			DBPath: "", // Will use the default data directory if empty
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
			Interactive: false,
		},
	}
}

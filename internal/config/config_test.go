// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"kurso/internal/testutil"
	"kurso/pkg/platform"
	"kurso/pkg/types"
)

// writeConfigFile writes content to dir/config.cue and returns the path.
func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// emptyOpts returns LoadOptions pointing at empty temp directories so the
// loader never touches the real user config or a kurso.cue in the test CWD.
func emptyOpts(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{
		ConfigDirPath: types.FilesystemPath(t.TempDir()),
		CourseDir:     types.FilesystemPath(t.TempDir()),
	}
}

func TestConfigDir_Override(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/config/dir")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if dir != "/custom/config/dir" {
		t.Errorf("ConfigDir() = %q, want override", dir)
	}
}

func TestDataDir_Override(t *testing.T) {
	t.Cleanup(Reset)

	SetDataDirOverride("/custom/data/dir")
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	if dir != "/custom/data/dir" {
		t.Errorf("DataDir() = %q, want override", dir)
	}
}

func TestDefaultProgressDBPath(t *testing.T) {
	t.Cleanup(Reset)

	SetDataDirOverride("/data/kurso")
	path, err := DefaultProgressDBPath()
	if err != nil {
		t.Fatalf("DefaultProgressDBPath() error: %v", err)
	}
	want := filepath.Join("/data/kurso", "progress.db")
	if path != want {
		t.Errorf("DefaultProgressDBPath() = %q, want %q", path, want)
	}
}

func TestDefaultHostKeyPath(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/cfg/kurso")
	path, err := DefaultHostKeyPath()
	if err != nil {
		t.Fatalf("DefaultHostKeyPath() error: %v", err)
	}
	want := filepath.Join("/cfg/kurso", "ssh", "kurso_ed25519")
	if path != want {
		t.Errorf("DefaultHostKeyPath() = %q, want %q", path, want)
	}
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	cfg, resolvedPath, err := loadWithOptions(context.Background(), emptyOpts(t))
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}

	if resolvedPath != "" {
		t.Errorf("resolvedPath = %q, want empty (defaults only)", resolvedPath)
	}

	defaults := DefaultConfig()
	if cfg.Lint.FailOn != defaults.Lint.FailOn {
		t.Errorf("Lint.FailOn = %q, want %q", cfg.Lint.FailOn, defaults.Lint.FailOn)
	}
	if cfg.Serve.Addr != defaults.Serve.Addr {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, defaults.Serve.Addr)
	}
	if !cfg.Serve.LiveReload {
		t.Error("Serve.LiveReload should default to true")
	}
	if !cfg.Serve.Metrics {
		t.Error("Serve.Metrics should default to true")
	}
	if cfg.SSH.Enabled {
		t.Error("SSH.Enabled should default to false")
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want auto", cfg.UI.ColorScheme)
	}
}

func TestLoadWithOptions_FromConfigDir(t *testing.T) {
	opts := emptyOpts(t)
	path := writeConfigFile(t, opts.ConfigDirPath.String(), `
serve: {
	addr: "127.0.0.1:9999"
	live_reload: false
}
ui: {
	verbose: true
}
`)

	cfg, resolvedPath, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}

	if resolvedPath != path {
		t.Errorf("resolvedPath = %q, want %q", resolvedPath, path)
	}
	if cfg.Serve.Addr != "127.0.0.1:9999" {
		t.Errorf("Serve.Addr = %q, want overridden value", cfg.Serve.Addr)
	}
	if cfg.Serve.LiveReload {
		t.Error("Serve.LiveReload should be overridden to false")
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be overridden to true")
	}
	// Untouched fields keep their defaults.
	if cfg.Lint.FailOn != FailOnError {
		t.Errorf("Lint.FailOn = %q, want default %q", cfg.Lint.FailOn, FailOnError)
	}
}

func TestLoadWithOptions_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.cue")
	if err := os.WriteFile(path, []byte(`lint: fail_on: "warning"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	opts := emptyOpts(t)
	opts.ConfigFilePath = types.FilesystemPath(path)

	cfg, resolvedPath, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if resolvedPath != path {
		t.Errorf("resolvedPath = %q, want %q", resolvedPath, path)
	}
	if cfg.Lint.FailOn != FailOnWarning {
		t.Errorf("Lint.FailOn = %q, want warning", cfg.Lint.FailOn)
	}
}

func TestLoadWithOptions_ExplicitFileMissing(t *testing.T) {
	opts := emptyOpts(t)
	opts.ConfigFilePath = types.FilesystemPath(filepath.Join(t.TempDir(), "nope.cue"))

	_, _, err := loadWithOptions(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error = %v, want mention of missing file", err)
	}
}

func TestLoadWithOptions_InvalidCUESyntax(t *testing.T) {
	opts := emptyOpts(t)
	writeConfigFile(t, opts.ConfigDirPath.String(), `serve: { addr: "x"`)

	_, _, err := loadWithOptions(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for invalid CUE syntax")
	}
}

func TestLoadWithOptions_UnknownField(t *testing.T) {
	opts := emptyOpts(t)
	writeConfigFile(t, opts.ConfigDirPath.String(), `snake_oil: true`)

	_, _, err := loadWithOptions(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for unknown config field")
	}
	if !strings.Contains(err.Error(), "not allowed") {
		t.Errorf("error = %v, want closed-struct rejection", err)
	}
}

func TestLoadWithOptions_InvalidEnumValue(t *testing.T) {
	opts := emptyOpts(t)
	writeConfigFile(t, opts.ConfigDirPath.String(), `ui: color_scheme: "sepia"`)

	_, _, err := loadWithOptions(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for invalid color_scheme value")
	}
}

func TestLoadWithOptions_ListenerCollision(t *testing.T) {
	opts := emptyOpts(t)
	writeConfigFile(t, opts.ConfigDirPath.String(), `
serve: addr: "127.0.0.1:7000"
ssh: {
	enabled: true
	addr:    "127.0.0.1:7000"
}
`)

	_, _, err := loadWithOptions(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for serve/ssh address collision")
	}
	if !strings.Contains(err.Error(), "distinct addresses") {
		t.Errorf("error = %v, want listener collision message", err)
	}
}

func TestLoadWithOptions_ListenerCollisionIgnoredWhenDisabled(t *testing.T) {
	opts := emptyOpts(t)
	writeConfigFile(t, opts.ConfigDirPath.String(), `
serve: addr: "127.0.0.1:7000"
ssh: addr: "127.0.0.1:7000"
`)

	_, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("collision with disabled ssh should load fine, got: %v", err)
	}
}

func TestLoadWithOptions_CourseLocalOverride(t *testing.T) {
	opts := emptyOpts(t)
	writeConfigFile(t, opts.ConfigDirPath.String(), `serve: addr: "127.0.0.1:1111"`)

	localPath := filepath.Join(opts.CourseDir.String(), LocalConfigFileName)
	if err := os.WriteFile(localPath, []byte(`serve: addr: "127.0.0.1:2222"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, resolvedPath, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if cfg.Serve.Addr != "127.0.0.1:2222" {
		t.Errorf("Serve.Addr = %q, want course-local override to win", cfg.Serve.Addr)
	}
	if resolvedPath != localPath {
		t.Errorf("resolvedPath = %q, want %q", resolvedPath, localPath)
	}
}

func TestLoadWithOptions_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := loadWithOptions(ctx, emptyOpts(t))
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got: %v", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	original := DefaultConfig()
	original.Lint.FailOn = FailOnWarning
	original.Serve.Addr = "0.0.0.0:8000"
	original.SSH.Enabled = true
	original.SSH.HostKeyPath = "/keys/host_ed25519"
	original.Progress.DBPath = "/state/progress.db"
	original.UI.ColorScheme = ColorSchemeDark

	opts := emptyOpts(t)
	writeConfigFile(t, opts.ConfigDirPath.String(), GenerateCUE(original))

	cfg, _, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() on generated CUE error: %v", err)
	}

	if cfg.Lint.FailOn != original.Lint.FailOn {
		t.Errorf("Lint.FailOn = %q, want %q", cfg.Lint.FailOn, original.Lint.FailOn)
	}
	if cfg.Serve.Addr != original.Serve.Addr {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, original.Serve.Addr)
	}
	if cfg.SSH.Enabled != original.SSH.Enabled {
		t.Errorf("SSH.Enabled = %v, want %v", cfg.SSH.Enabled, original.SSH.Enabled)
	}
	if cfg.SSH.HostKeyPath != original.SSH.HostKeyPath {
		t.Errorf("SSH.HostKeyPath = %q, want %q", cfg.SSH.HostKeyPath, original.SSH.HostKeyPath)
	}
	if cfg.Progress.DBPath != original.Progress.DBPath {
		t.Errorf("Progress.DBPath = %q, want %q", cfg.Progress.DBPath, original.Progress.DBPath)
	}
	if cfg.UI.ColorScheme != original.UI.ColorScheme {
		t.Errorf("UI.ColorScheme = %q, want %q", cfg.UI.ColorScheme, original.UI.ColorScheme)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Cleanup(Reset)
	SetConfigDirOverride(t.TempDir())

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}

	cfgDir, _ := ConfigDir()
	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if !fileExists(cfgPath) {
		t.Fatal("CreateDefaultConfig() did not create the config file")
	}

	// Second call is a no-op; the existing file must be preserved.
	marker := []byte("// marker\n")
	if err := os.WriteFile(cfgPath, marker, 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() second call error: %v", err)
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != string(marker) {
		t.Error("CreateDefaultConfig() overwrote an existing config file")
	}
}

func TestSave(t *testing.T) {
	t.Cleanup(Reset)
	SetConfigDirOverride(t.TempDir())

	cfg := DefaultConfig()
	cfg.UI.Verbose = true

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	cfgDir, _ := ConfigDir()
	data, err := os.ReadFile(filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt))
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.Contains(string(data), "verbose: true") {
		t.Errorf("saved config missing verbose override:\n%s", data)
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if fileExists(filepath.Join(dir, "missing.cue")) {
		t.Error("fileExists() should be false for missing file")
	}

	if fileExists(dir) {
		t.Error("fileExists() should be false for a directory")
	}

	path := filepath.Join(dir, "present.cue")
	if err := os.WriteFile(path, []byte("x: 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !fileExists(path) {
		t.Error("fileExists() should be true for an existing file")
	}
}

func TestConfigDir_ResolvesUnderHome(t *testing.T) {
	// Not parallel: mutates HOME and XDG_CONFIG_HOME.
	if runtime.GOOS == platform.Windows {
		t.Skip("home-based resolution does not apply on Windows")
	}
	t.Cleanup(Reset)

	home := t.TempDir()
	t.Cleanup(testutil.SetHomeDir(t, home))
	t.Cleanup(testutil.MustUnsetenv(t, "XDG_CONFIG_HOME"))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}

	var want string
	if runtime.GOOS == platform.Darwin {
		want = filepath.Join(home, "Library", "Application Support", AppName)
	} else {
		want = filepath.Join(home, ".config", AppName)
	}
	if dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}
}

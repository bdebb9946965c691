// SPDX-License-Identifier: MPL-2.0

package course

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"kurso/pkg/cueutil"
)

const (
	// DefaultDocsDir is the lesson tree directory when the manifest does
	// not set docs_dir.
	DefaultDocsDir = "docs"
	// DefaultSiteDir is the build output directory when the manifest does
	// not set site_dir.
	DefaultSiteDir = "site"

	// ThemeAuto follows the terminal/browser preference.
	ThemeAuto Theme = "auto"
	// ThemeDark forces the dark palette.
	ThemeDark Theme = "dark"
	// ThemeLight forces the light palette.
	ThemeLight Theme = "light"
)

// ManifestNames are the file names recognized as a course manifest, in
// preference order.
var ManifestNames = []string{"course.yml", "course.yaml"}

var (
	// ErrManifestNotFound is returned when no manifest exists in the start
	// directory or any of its parents.
	ErrManifestNotFound = errors.New("course manifest not found")
	// ErrManifestInvalid is the sentinel error wrapped by
	// InvalidManifestError.
	ErrManifestInvalid = errors.New("invalid course manifest")
)

type (
	// Theme selects the course color palette. The zero value means
	// ThemeAuto.
	Theme string

	// Manifest is the parsed course.yml.
	Manifest struct {
		// Title is the course title. Required.
		Title string `yaml:"title"`
		// Description is a short course summary.
		Description string `yaml:"description"`
		// DocsDir is the lesson tree, relative to the manifest.
		DocsDir string `yaml:"docs_dir"`
		// SiteDir is the build output directory, relative to the manifest.
		SiteDir string `yaml:"site_dir"`
		// BaseURL prefixes generated links when the site is not served
		// from the root.
		BaseURL string `yaml:"base_url"`
		// Language is the content language tag (e.g. "en").
		Language string `yaml:"language"`
		// Nav is the ordered lesson navigation. Empty means every
		// non-draft lesson in lexical path order.
		Nav []NavEntry `yaml:"nav"`
		// Theme selects the color palette.
		Theme Theme `yaml:"theme"`
		// Strict promotes structural warnings (lessons missing from nav)
		// into reportable diagnostics.
		Strict bool `yaml:"strict"`
	}

	// NavEntry is one manifest nav item: either a bare lesson path or a
	// "Title: path" pair.
	NavEntry struct {
		// Title overrides the lesson title in navigation. Empty means the
		// lesson's own title.
		Title string
		// Path is the lesson file, relative to docs_dir.
		Path string
	}

	// InvalidManifestError reports every validation problem of a manifest
	// at once.
	InvalidManifestError struct {
		// Path is the manifest file.
		Path string
		// Reasons are the individual validation failures.
		Reasons []string
	}
)

// IsValid returns whether the Theme is one of the supported palettes, and
// a list of validation errors if it is not.
func (t Theme) IsValid() (bool, []error) {
	switch t {
	case ThemeAuto, ThemeDark, ThemeLight, "":
		return true, nil
	default:
		return false, []error{fmt.Errorf("invalid theme %q (valid: auto, dark, light)", t)}
	}
}

// String returns the string representation of the Theme.
func (t Theme) String() string { return string(t) }

// UnmarshalYAML accepts either a bare scalar path or a single-pair
// "Title: path" mapping.
func (e *NavEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var p string
		if err := value.Decode(&p); err != nil {
			return err
		}
		e.Path = p
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: nav entry must be a single \"Title: path\" pair", value.Line)
		}
		var title, p string
		if err := value.Content[0].Decode(&title); err != nil {
			return err
		}
		if err := value.Content[1].Decode(&p); err != nil {
			return fmt.Errorf("line %d: nav entry value must be a path", value.Content[1].Line)
		}
		e.Title = title
		e.Path = p
		return nil
	default:
		return fmt.Errorf("line %d: nav entry must be a path or a \"Title: path\" pair", value.Line)
	}
}

// MarshalYAML renders the entry back in its compact manifest form.
func (e NavEntry) MarshalYAML() (interface{}, error) {
	if e.Title == "" {
		return e.Path, nil
	}
	return map[string]string{e.Title: e.Path}, nil
}

// Error implements the error interface for InvalidManifestError.
func (e *InvalidManifestError) Error() string {
	if len(e.Reasons) == 1 {
		return fmt.Sprintf("invalid course manifest %s: %s", e.Path, e.Reasons[0])
	}
	return fmt.Sprintf("invalid course manifest %s:\n  - %s", e.Path, strings.Join(e.Reasons, "\n  - "))
}

// Unwrap returns ErrManifestInvalid for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrManifestInvalid }

// LoadManifest reads, parses, and validates a course manifest. The raw
// bytes are returned alongside the manifest; course identity hashes them.
func LoadManifest(manifestPath string) (*Manifest, []byte, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read course manifest: %w", err)
	}
	if err := cueutil.CheckFileSize(raw, cueutil.DefaultMaxFileSize, manifestPath); err != nil {
		return nil, nil, err
	}

	m := &Manifest{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, &InvalidManifestError{
			Path:    manifestPath,
			Reasons: []string{fmt.Sprintf("not valid YAML: %v", err)},
		}
	}

	m.applyDefaults()
	if reasons := m.validate(); len(reasons) > 0 {
		return nil, nil, &InvalidManifestError{Path: manifestPath, Reasons: reasons}
	}
	return m, raw, nil
}

// applyDefaults fills the documented manifest defaults.
func (m *Manifest) applyDefaults() {
	if m.DocsDir == "" {
		m.DocsDir = DefaultDocsDir
	}
	if m.SiteDir == "" {
		m.SiteDir = DefaultSiteDir
	}
	if m.Theme == "" {
		m.Theme = ThemeAuto
	}
	if m.Language == "" {
		m.Language = "en"
	}
}

// validate collects every manifest-level problem. Checks that need the
// filesystem (nav entries existing on disk) happen during Discover.
func (m *Manifest) validate() []string {
	var reasons []string

	if strings.TrimSpace(m.Title) == "" {
		reasons = append(reasons, "title is required")
	}
	if valid, errs := m.Theme.IsValid(); !valid {
		reasons = append(reasons, errs[0].Error())
	}
	for _, dir := range []struct{ field, value string }{
		{"docs_dir", m.DocsDir},
		{"site_dir", m.SiteDir},
	} {
		if problem := relPathProblem(dir.value); problem != "" {
			reasons = append(reasons, fmt.Sprintf("%s %q %s", dir.field, dir.value, problem))
		}
	}
	if filepath.Clean(m.DocsDir) == filepath.Clean(m.SiteDir) {
		reasons = append(reasons, "docs_dir and site_dir must differ")
	}

	seen := make(map[string]int, len(m.Nav))
	for i, entry := range m.Nav {
		switch {
		case entry.Path == "":
			reasons = append(reasons, fmt.Sprintf("nav[%d]: path is empty", i))
		case relPathProblem(entry.Path) != "":
			reasons = append(reasons, fmt.Sprintf("nav[%d]: path %q %s", i, entry.Path, relPathProblem(entry.Path)))
		case !strings.HasSuffix(entry.Path, ".md"):
			reasons = append(reasons, fmt.Sprintf("nav[%d]: path %q must end in .md", i, entry.Path))
		default:
			normalized := path.Clean(entry.Path)
			if first, dup := seen[normalized]; dup {
				reasons = append(reasons, fmt.Sprintf("nav[%d]: path %q repeats nav[%d]", i, entry.Path, first))
			} else {
				seen[normalized] = i
			}
		}
	}

	return reasons
}

// relPathProblem returns why a manifest path value is not a safe relative
// path, or "" when it is.
func relPathProblem(p string) string {
	switch {
	case p == "":
		return "is empty"
	case path.IsAbs(p) || filepath.IsAbs(p):
		return "must be relative"
	case p != path.Clean(p):
		return "must be a clean path"
	case p == ".." || strings.HasPrefix(p, "../"):
		return "must not escape the course root"
	default:
		return ""
	}
}

// FindManifest walks from start upward looking for a course manifest,
// stopping at the filesystem root. It returns the manifest's absolute path.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve course directory: %w", err)
	}

	for {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			if info, statErr := os.Stat(candidate); statErr == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched %s and parents for %s)", ErrManifestNotFound, start, strings.Join(ManifestNames, ", "))
		}
		dir = parent
	}
}

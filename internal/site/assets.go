// SPDX-License-Identifier: MPL-2.0

package site

import (
	"embed"
	"io/fs"
	"path"
)

//go:embed assets
var assetFS embed.FS

// writeEmbeddedAssets copies the bundled static files into the assets
// directory of the site via write. It returns the number of files written.
func writeEmbeddedAssets(write func(rel string, data []byte) error) (int, error) {
	entries, err := fs.ReadDir(assetFS, "assets")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(assetFS, path.Join("assets", e.Name()))
		if err != nil {
			return n, err
		}
		if err := write(path.Join("assets", e.Name()), data); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Package assets bundles the genre illustrations into the binary.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/mrlokans/bookworm/internal/entities"
)

//go:embed genres/*.svg
var embedded embed.FS

const ContentType = "image/svg+xml"

// Catalog resolves illustrations by name.
type Catalog struct {
	files    fs.FS
	fallback string
}

// NewCatalog returns the catalog backed by the embedded illustrations.
func NewCatalog() *Catalog {
	sub, err := fs.Sub(embedded, "genres")
	if err != nil {
		panic(fmt.Sprintf("assets: genres directory missing: %v", err))
	}
	return NewCatalogFS(sub, entities.FallbackGenre.Illustration())
}

// NewCatalogFS builds a catalog over any fs holding <name>.svg files.
func NewCatalogFS(files fs.FS, fallback string) *Catalog {
	return &Catalog{files: files, fallback: fallback}
}

// Lookup returns the illustration for name and the key actually served.
// Unknown names resolve to the fallback illustration.
func (c *Catalog) Lookup(name string) ([]byte, string, error) {
	name = strings.TrimSuffix(path.Base(name), ".svg")
	if data, err := fs.ReadFile(c.files, name+".svg"); err == nil {
		return data, name, nil
	}

	data, err := fs.ReadFile(c.files, c.fallback+".svg")
	if err != nil {
		return nil, "", fmt.Errorf("fallback illustration %q: %w", c.fallback, err)
	}
	return data, c.fallback, nil
}

// Names lists every illustration in the catalog.
func (c *Catalog) Names() ([]string, error) {
	matches, err := fs.Glob(c.files, "*.svg")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ".svg"))
	}
	sort.Strings(names)
	return names, nil
}

package catalog

import "levelup/internal/model"

// Source serves the catalog from a file, or the embedded default when no
// path is configured. The file is re-read on every call so edits are picked
// up by the next sync.
type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) Catalog() (*model.Catalog, error) {
	if s.path == "" {
		return Default()
	}
	return Load(s.path)
}

// Static serves a catalog held in memory.
type Static struct {
	C *model.Catalog
}

func (s Static) Catalog() (*model.Catalog, error) {
	return s.C, nil
}

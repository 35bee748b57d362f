package catalog

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"levelup/internal/model"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

//go:embed default_catalog.json
var defaultCatalog []byte

type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

type document struct {
	Classes      []model.ClassConfig                   `json:"classes" toml:"classes"`
	UserDefaults model.UserDefaults                    `json:"userDefaults" toml:"userDefaults"`
	Templates    map[string][]model.TemplateDefinition `json:"templates" toml:"templates"`
}

// Default returns the catalog compiled into the binary.
func Default() (*model.Catalog, error) {
	return Parse(defaultCatalog, FormatJSON)
}

// Load reads a catalog file. The format is picked from the file extension.
func Load(path string) (*model.Catalog, error) {
	format, err := formatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}

	return Parse(data, format)
}

func Parse(data []byte, format Format) (*model.Catalog, error) {
	var doc document

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode json catalog")
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode toml catalog")
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}

	if err := validate(&doc); err != nil {
		return nil, err
	}

	templates := doc.Templates
	if templates == nil {
		templates = map[string][]model.TemplateDefinition{}
	}

	return &model.Catalog{
		Classes:      doc.Classes,
		UserDefaults: doc.UserDefaults,
		Templates:    templates,
	}, nil
}

func validate(doc *document) error {
	seen := make(map[string]struct{}, len(doc.Classes))
	for _, c := range doc.Classes {
		if c.ID == "" {
			return errors.New("catalog class without id")
		}
		if c.ID == model.WeeklyOrderEntry {
			return errors.Errorf("catalog class id %q is reserved", c.ID)
		}
		if _, ok := seen[c.ID]; ok {
			return errors.Errorf("duplicate catalog class %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	if doc.UserDefaults.Gold < 0 {
		return errors.New("catalog default gold must not be negative")
	}

	for category, defs := range doc.Templates {
		for i, def := range defs {
			if !model.QuestType(def.Type).Valid() {
				return errors.Errorf("template %s[%d] has invalid type %q", category, i, def.Type)
			}
		}
	}

	return nil
}

func formatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}

package model

// Catalog is the static data set the engine seeds from.
type Catalog struct {
	Classes      []ClassConfig
	UserDefaults UserDefaults
	// Templates maps a category (usually a class id) to its definitions.
	Templates map[string][]TemplateDefinition
}

type ClassConfig struct {
	ID    string `json:"id" toml:"id"`
	Color string `json:"color" toml:"color"`
}

type UserDefaults struct {
	Gold           int      `json:"gold" toml:"gold"`
	StarterClasses []string `json:"starterClasses" toml:"starterClasses"`
	ClassOrder     []string `json:"classOrder" toml:"classOrder"`
}

// TemplateDefinition is a raw catalog record. Requirement fields are string
// encoded and parsed at ingestion.
type TemplateDefinition struct {
	Title                string `json:"title" toml:"title"`
	Description          string `json:"description" toml:"description"`
	Type                 string `json:"type" toml:"type"`
	Class                string `json:"class" toml:"class"`
	BaseXP               int    `json:"baseXP" toml:"baseXP"`
	BaseGold             int    `json:"baseGold" toml:"baseGold"`
	Enabled              bool   `json:"enabled" toml:"enabled"`
	Scaling              bool   `json:"scaling" toml:"scaling"`
	Level1Requirements   string `json:"level1Requirements,omitempty" toml:"level1Requirements"`
	Level100Requirements string `json:"level100Requirements,omitempty" toml:"level100Requirements"`
	Requirement          string `json:"requirement,omitempty" toml:"requirement"`
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"levelup/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlCatalog = `
[userDefaults]
gold = 50
starterClasses = ["Warrior"]
classOrder = ["Warrior", "Weekly"]

[[classes]]
id = "Warrior"
color = "#c0392b"

[[templates.Warrior]]
title = "Push-ups"
type = "Daily"
class = "Warrior"
baseXP = 20
baseGold = 10
enabled = true
scaling = true
level1Requirements = "10"
level100Requirements = "100"

[[templates.Weekly]]
title = "Deep clean"
type = "Weekly"
class = "Weekly"
baseXP = 100
baseGold = 50
enabled = true
requirement = "1"
`

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Classes)
	assert.Equal(t, 100, c.UserDefaults.Gold)
	assert.Equal(t, []string{"Warrior", "Ranger", "Mage"}, c.UserDefaults.StarterClasses)
	assert.Contains(t, c.UserDefaults.ClassOrder, model.WeeklyOrderEntry)

	ids := make(map[string]bool, len(c.Classes))
	for _, class := range c.Classes {
		ids[class.ID] = true
	}
	for _, starter := range c.UserDefaults.StarterClasses {
		assert.True(t, ids[starter], starter)
	}
	assert.NotEmpty(t, c.Templates["Warrior"])
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		wantErr bool
	}{
		{
			name:   "Json",
			data:   `{"classes":[{"id":"Warrior"}],"userDefaults":{"gold":5},"templates":{"Warrior":[{"title":"Run","type":"Daily","class":"Warrior"}]}}`,
			format: FormatJSON,
		},
		{
			name:   "Toml",
			data:   tomlCatalog,
			format: FormatTOML,
		},
		{
			name:    "Malformed json",
			data:    `{"classes":`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "Duplicate class",
			data:    `{"classes":[{"id":"Mage"},{"id":"Mage"}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "Reserved class id",
			data:    `{"classes":[{"id":"Weekly"}]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "Negative gold",
			data:    `{"userDefaults":{"gold":-1}}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "Invalid template type",
			data:    `{"templates":{"Mage":[{"title":"Read","type":"Monthly"}]}}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "Unknown format",
			data:    `classes: []`,
			format:  Format("yaml"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.data), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c.Templates)
		})
	}
}

func TestParseTOML(t *testing.T) {
	c, err := Parse([]byte(tomlCatalog), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, 50, c.UserDefaults.Gold)
	require.Len(t, c.Templates["Warrior"], 1)
	def := c.Templates["Warrior"][0]
	assert.Equal(t, "Push-ups", def.Title)
	assert.True(t, def.Scaling)
	assert.Equal(t, "100", def.Level100Requirements)
	require.Len(t, c.Templates["Weekly"], 1)
	assert.Equal(t, string(model.QuestTypeWeekly), c.Templates["Weekly"][0].Type)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlCatalog), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, c.UserDefaults.Gold)

	_, err = Load(filepath.Join(dir, "catalog.yaml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSource(t *testing.T) {
	c, err := NewSource("").Catalog()
	require.NoError(t, err)
	assert.NotEmpty(t, c.Classes)

	static := &model.Catalog{UserDefaults: model.UserDefaults{Gold: 7}}
	c, err = Static{C: static}.Catalog()
	require.NoError(t, err)
	assert.Same(t, static, c)
}

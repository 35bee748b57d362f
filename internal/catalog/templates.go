package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"levelup/internal/model"

	"github.com/google/uuid"
)

const defaultRequirement = 1

// Templates converts the catalog definitions into template records in a
// stable order (categories sorted by name, definitions in file order).
func Templates(c *model.Catalog, now time.Time) []*model.QuestTemplate {
	categories := make([]string, 0, len(c.Templates))
	for category := range c.Templates {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var out []*model.QuestTemplate
	for _, category := range categories {
		for _, def := range c.Templates[category] {
			out = append(out, FromDefinition(def, now))
		}
	}

	return out
}

func FromDefinition(def model.TemplateDefinition, now time.Time) *model.QuestTemplate {
	t := &model.QuestTemplate{
		ID:               uuid.New(),
		Title:            def.Title,
		Description:      def.Description,
		Type:             model.QuestType(def.Type),
		Class:            def.Class,
		BaseXP:           def.BaseXP,
		BaseGold:         def.BaseGold,
		Enabled:          def.Enabled,
		Scaling:          def.Scaling,
		RequirementCount: defaultRequirement,
		CreatedAt:        now,
	}

	if n, ok := ParseRequirement(def.Requirement); ok {
		t.RequirementCount = n
	}
	if n, ok := ParseRequirement(def.Level1Requirements); ok {
		t.Level1Requirement = &n
	}
	if n, ok := ParseRequirement(def.Level100Requirements); ok {
		t.Level100Requirement = &n
	}

	return t
}

// ParseRequirement reads a string encoded requirement. Missing, non-numeric
// or non-positive values report false.
func ParseRequirement(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}

	return n, true
}

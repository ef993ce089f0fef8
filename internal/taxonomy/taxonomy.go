package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a taxonomy document defines no categories.
var ErrEmpty = errors.New("taxonomy has no categories")

// Category is a named, ordered group of canonical skill terms.
type Category struct {
	Name   string
	Skills []string
}

// Taxonomy maps skill categories to their canonical skill terms.
// It is immutable after construction and safe for concurrent use.
type Taxonomy struct {
	categories []Category
	index      map[string]int
}

// New builds a taxonomy from the provided categories. Category names are
// trimmed. Skills are kept exactly as written, so surrounding spaces take part
// in matching. Blank names and duplicate categories are rejected, duplicate
// skills within a category collapse to the first occurrence.
func New(categories []Category) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, ErrEmpty
	}

	t := &Taxonomy{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, errors.New("category name must not be empty")
		}
		if _, exists := t.index[name]; exists {
			return nil, fmt.Errorf("duplicate category %q", name)
		}

		skills := make([]string, 0, len(c.Skills))
		seen := make(map[string]struct{}, len(c.Skills))
		for i, skill := range c.Skills {
			if strings.TrimSpace(skill) == "" {
				return nil, fmt.Errorf("category %q: skill #%d is empty", name, i+1)
			}
			if _, dup := seen[skill]; dup {
				continue
			}
			seen[skill] = struct{}{}
			skills = append(skills, skill)
		}

		t.index[name] = len(t.categories)
		t.categories = append(t.categories, Category{Name: name, Skills: skills})
	}

	return t, nil
}

// Load reads a taxonomy document from disk. Both JSON and YAML mappings of
// category to skill list are accepted.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %q: %w", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing taxonomy %q: %w", path, err)
	}

	return t, nil
}

// Parse decodes a taxonomy document, keeping categories in document order.
func Parse(data []byte) (*Taxonomy, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmpty
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of category to skills at line %d", root.Line)
	}

	categories := make([]Category, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("category name at line %d is not a string", key.Line)
		}

		var skills []string
		if err := value.Decode(&skills); err != nil {
			return nil, fmt.Errorf("category %q: skills must be a list of strings: %w", key.Value, err)
		}
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return nil, fmt.Errorf("category %q: skill at line %d is not a string", key.Value, item.Line)
			}
		}

		categories = append(categories, Category{Name: key.Value, Skills: skills})
	}

	return New(categories)
}

// Categories returns the category names in taxonomy order.
func (t *Taxonomy) Categories() []string {
	if t == nil {
		return nil
	}

	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Skills returns a copy of the skills for the category and whether it exists.
func (t *Taxonomy) Skills(category string) ([]string, bool) {
	if t == nil {
		return nil, false
	}

	i, ok := t.index[category]
	if !ok {
		return nil, false
	}
	return append([]string(nil), t.categories[i].Skills...), true
}

// Each calls fn for every category in taxonomy order. The skills slice must
// not be modified.
func (t *Taxonomy) Each(fn func(category string, skills []string)) {
	if t == nil {
		return
	}
	for _, c := range t.categories {
		fn(c.Name, c.Skills)
	}
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.categories)
}

// SkillCount returns the total number of skills across all categories.
func (t *Taxonomy) SkillCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, c := range t.categories {
		n += len(c.Skills)
	}
	return n
}

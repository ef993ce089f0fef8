package matching

import (
	"encoding/json"
	"sort"
	"strings"
)

// SkillSet is a set of canonical skill terms.
type SkillSet map[string]struct{}

// NewSkillSet builds a set from the provided skills.
func NewSkillSet(skills ...string) SkillSet {
	s := make(SkillSet, len(skills))
	for _, skill := range skills {
		s[skill] = struct{}{}
	}
	return s
}

// Has reports whether the skill is a member of the set.
func (s SkillSet) Has(skill string) bool {
	_, ok := s[skill]
	return ok
}

// Len returns the number of members.
func (s SkillSet) Len() int {
	return len(s)
}

// Intersect returns the members present in both sets.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := make(SkillSet)
	for skill := range s {
		if other.Has(skill) {
			out[skill] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are absent from other.
func (s SkillSet) Difference(other SkillSet) SkillSet {
	out := make(SkillSet)
	for skill := range s {
		if !other.Has(skill) {
			out[skill] = struct{}{}
		}
	}
	return out
}

// Sorted returns the canonical members in ascending order.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for skill := range s {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// Normalized returns the members lower-cased, de-duplicated and sorted.
func (s SkillSet) Normalized() []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for skill := range s {
		lower := strings.ToLower(skill)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, lower)
	}
	sort.Strings(out)
	return out
}

// Categorized groups skill sets by category. A category can be present with
// an empty set, which is distinct from being absent.
type Categorized struct {
	order []string
	sets  map[string]SkillSet
}

// FromMap builds a Categorized value with categories ordered by name.
func FromMap(m map[string][]string) Categorized {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var c Categorized
	for _, name := range names {
		c.put(name, NewSkillSet(m[name]...))
	}
	return c
}

func (c *Categorized) put(category string, set SkillSet) {
	if c.sets == nil {
		c.sets = make(map[string]SkillSet)
	}
	if _, ok := c.sets[category]; !ok {
		c.order = append(c.order, category)
	}
	c.sets[category] = set
}

// Lookup returns the set for the category and whether the category is present.
func (c Categorized) Lookup(category string) (SkillSet, bool) {
	set, ok := c.sets[category]
	return set, ok
}

// Get returns the set for the category, treating an absent category as empty.
func (c Categorized) Get(category string) SkillSet {
	if set, ok := c.sets[category]; ok {
		return set
	}
	return SkillSet{}
}

// Categories returns the present categories in insertion order.
func (c Categorized) Categories() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of present categories.
func (c Categorized) Len() int {
	return len(c.order)
}

// Total returns the number of skills across all categories.
func (c Categorized) Total() int {
	n := 0
	for _, set := range c.sets {
		n += set.Len()
	}
	return n
}

// All returns the union of every category's skills.
func (c Categorized) All() SkillSet {
	out := make(SkillSet)
	for _, set := range c.sets {
		for skill := range set {
			out[skill] = struct{}{}
		}
	}
	return out
}

// Map renders the non-empty categories as lower-cased sorted lists.
func (c Categorized) Map() map[string][]string {
	out := make(map[string][]string, len(c.order))
	for _, category := range c.order {
		set := c.sets[category]
		if set.Len() == 0 {
			continue
		}
		out[category] = set.Normalized()
	}
	return out
}

// MarshalJSON encodes the value using Map.
func (c Categorized) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

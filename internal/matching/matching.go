// Package matching extracts taxonomy skills from free text and compares the
// skill sets found in a resume and a job description.
package matching

import (
	"strings"

	"github.com/U-Jay-git/ResumeRise/internal/taxonomy"
)

// Extract returns the taxonomy skills found in text, grouped by category.
//
// A skill matches when its lower-cased form occurs anywhere in the lower-cased
// text. Word boundaries are not checked, so "java" is found inside
// "javascript". Categories without matches are omitted.
func Extract(text string, tax *taxonomy.Taxonomy) Categorized {
	var found Categorized
	if text == "" || tax == nil {
		return found
	}

	lower := strings.ToLower(text)
	tax.Each(func(category string, skills []string) {
		var set SkillSet
		for _, skill := range skills {
			if strings.Contains(lower, strings.ToLower(skill)) {
				if set == nil {
					set = make(SkillSet)
				}
				set[skill] = struct{}{}
			}
		}
		if set != nil {
			found.put(category, set)
		}
	})

	return found
}

// CategoryResult is the comparison outcome for one required category.
type CategoryResult struct {
	Category string
	Required SkillSet
	Matched  SkillSet
	Missing  SkillSet
}

// Comparison is the outcome of comparing resume skills against job skills.
type Comparison struct {
	Categories    []CategoryResult
	TotalRequired int
	TotalMatched  int
	// Score is floor(100 * matched / required), or 0 when nothing is required.
	Score int
}

// Compare evaluates the resume skills against every category present in job.
// Resume categories the job does not mention are ignored.
func Compare(resume, job Categorized) Comparison {
	var cmp Comparison

	for _, category := range job.order {
		required := job.sets[category]
		have := resume.Get(category)

		res := CategoryResult{
			Category: category,
			Required: required,
			Matched:  required.Intersect(have),
			Missing:  required.Difference(have),
		}

		cmp.TotalRequired += required.Len()
		cmp.TotalMatched += res.Matched.Len()
		cmp.Categories = append(cmp.Categories, res)
	}

	if cmp.TotalRequired > 0 {
		cmp.Score = 100 * cmp.TotalMatched / cmp.TotalRequired
	}

	return cmp
}

// Matched returns the matched skills per job category.
func (c Comparison) Matched() Categorized {
	var out Categorized
	for _, res := range c.Categories {
		out.put(res.Category, res.Matched)
	}
	return out
}

// Missing returns the missing skills per job category.
func (c Comparison) Missing() Categorized {
	var out Categorized
	for _, res := range c.Categories {
		out.put(res.Category, res.Missing)
	}
	return out
}

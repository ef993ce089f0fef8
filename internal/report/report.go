package report

import (
	"sort"

	"github.com/U-Jay-git/ResumeRise/internal/matching"
	"github.com/U-Jay-git/ResumeRise/internal/scoring"
)

// StatusOK is reported in ModelStatus when the learned score is present.
const StatusOK = "ok"

// Response is the result returned to callers for one resume/job pair.
type Response struct {
	OverlapScore   int      `json:"match_score_overlap"`
	ModelScore     *float64 `json:"match_score_model"`
	ModelAvailable bool     `json:"model_available"`
	ModelStatus    string   `json:"model_status"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`

	*Breakdown
}

// Breakdown carries the per-category view of the analysis.
type Breakdown struct {
	ResumeSkills map[string][]string `json:"resume_skills"`
	JobSkills    map[string][]string `json:"job_skills"`
	Matched      map[string][]string `json:"matched"`
	Missing      map[string][]string `json:"missing"`
}

// Options controls optional parts of the response.
type Options struct {
	Breakdown bool
}

// Assemble builds the response from the comparison, the extracted skill sets
// and the learned score.
func Assemble(cmp matching.Comparison, resume, job matching.Categorized, learned scoring.LearnedScore, opts Options) *Response {
	matched := cmp.Matched()
	missing := cmp.Missing()

	resp := &Response{
		OverlapScore:   cmp.Score,
		ModelScore:     learned.Ptr(),
		ModelAvailable: learned.IsAvailable(),
		ModelStatus:    StatusOK,
		MatchedSkills:  flatten(matched),
		MissingSkills:  flatten(missing),
	}

	if !learned.IsAvailable() {
		resp.ModelStatus = learned.Reason()
	}

	if opts.Breakdown {
		resp.Breakdown = &Breakdown{
			ResumeSkills: resume.Map(),
			JobSkills:    job.Map(),
			Matched:      matched.Map(),
			Missing:      missing.Map(),
		}
	}

	return resp
}

// flatten returns the union of all categories, lower-cased, de-duplicated and sorted.
func flatten(c matching.Categorized) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range c.Map() {
		for _, skill := range list {
			if _, ok := seen[skill]; ok {
				continue
			}
			seen[skill] = struct{}{}
			out = append(out, skill)
		}
	}
	sort.Strings(out)
	return out
}

package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

// MaxFeatures bounds the vocabulary size of a pipeline artifact.
const MaxFeatures = 5000

// tokenPattern matches runs of two or more letters, digits or underscores,
// the same tokens the training vectorizer produces. Combining marks are not
// word characters and end a token.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Artifact is the serialized form of a trained TF-IDF + linear regression
// pipeline.
type Artifact struct {
	Version     string         `json:"version"`
	NgramRange  [2]int         `json:"ngram_range"`
	Lowercase   *bool          `json:"lowercase,omitempty"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Coef        []float64      `json:"coef"`
	Intercept   float64        `json:"intercept"`
}

// Pipeline predicts a match ratio from a joined resume/job text.
// It is read-only after construction and safe for concurrent use.
type Pipeline struct {
	version     string
	minN, maxN  int
	lowercase   bool
	sublinearTF bool
	l2          bool
	vocabulary  map[string]int
	idf         []float64
	coef        []float64
	intercept   float64
}

// LoadPipeline reads and validates a pipeline artifact from disk.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact %q: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding model artifact %q: %w", path, err)
	}

	p, err := NewPipeline(a)
	if err != nil {
		return nil, fmt.Errorf("model artifact %q: %w", path, err)
	}
	return p, nil
}

// NewPipeline validates the artifact and builds a pipeline from it.
func NewPipeline(a Artifact) (*Pipeline, error) {
	minN, maxN := a.NgramRange[0], a.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 2
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("invalid ngram range [%d, %d]", minN, maxN)
	}

	n := len(a.Vocabulary)
	if n == 0 {
		return nil, errors.New("vocabulary is empty")
	}
	if n > MaxFeatures {
		return nil, fmt.Errorf("vocabulary has %d terms, limit is %d", n, MaxFeatures)
	}
	if len(a.IDF) != n || len(a.Coef) != n {
		return nil, fmt.Errorf("vocabulary has %d terms but idf has %d and coef has %d", n, len(a.IDF), len(a.Coef))
	}

	seen := make([]bool, n)
	for term, col := range a.Vocabulary {
		if col < 0 || col >= n {
			return nil, fmt.Errorf("term %q has column %d outside [0, %d)", term, col, n)
		}
		if seen[col] {
			return nil, fmt.Errorf("column %d is assigned to more than one term", col)
		}
		seen[col] = true
	}

	for i := range a.IDF {
		if !finite(a.IDF[i]) || !finite(a.Coef[i]) {
			return nil, fmt.Errorf("non-finite weight at column %d", i)
		}
	}
	if !finite(a.Intercept) {
		return nil, errors.New("non-finite intercept")
	}

	var l2 bool
	switch strings.ToLower(strings.TrimSpace(a.Norm)) {
	case "", "l2":
		l2 = true
	case "none":
	default:
		return nil, fmt.Errorf("unsupported norm %q", a.Norm)
	}

	lowercase := true
	if a.Lowercase != nil {
		lowercase = *a.Lowercase
	}

	return &Pipeline{
		version:     a.Version,
		minN:        minN,
		maxN:        maxN,
		lowercase:   lowercase,
		sublinearTF: a.SublinearTF,
		l2:          l2,
		vocabulary:  a.Vocabulary,
		idf:         a.IDF,
		coef:        a.Coef,
		intercept:   a.Intercept,
	}, nil
}

// Version returns the artifact version string.
func (p *Pipeline) Version() string {
	return p.version
}

// Features returns the vocabulary size.
func (p *Pipeline) Features() int {
	return len(p.vocabulary)
}

// Predict implements Predictor. The result is the raw regression output and
// is not clamped.
func (p *Pipeline) Predict(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sum := p.intercept
	for _, f := range p.transform(text) {
		sum += f.weight * p.coef[f.col]
	}
	return sum, nil
}

type feature struct {
	col    int
	weight float64
}

// transform returns the non-zero TF-IDF weights of text ordered by column.
// Sums over the result are taken in column order so that identical inputs
// give bit-identical predictions.
func (p *Pipeline) transform(text string) []feature {
	if p.lowercase {
		text = strings.ToLower(text)
	}
	tokens := tokenPattern.FindAllString(text, -1)

	counts := make(map[int]float64)
	for n := p.minN; n <= p.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if col, ok := p.vocabulary[term]; ok {
				counts[col]++
			}
		}
	}

	features := make([]feature, 0, len(counts))
	for col, tf := range counts {
		if p.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		features = append(features, feature{col: col, weight: tf * p.idf[col]})
	}
	sort.Slice(features, func(i, j int) bool { return features[i].col < features[j].col })

	if p.l2 {
		var norm float64
		for _, f := range features {
			norm += f.weight * f.weight
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range features {
				features[i].weight /= norm
			}
		}
	}

	return features
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadJSONPreservesOrder(t *testing.T) {
	tax, err := Load(filepath.Join("testdata", "skills.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := tax.Categories(); !reflect.DeepEqual(got, []string{"Languages", "Web"}) {
		t.Fatalf("unexpected categories: %v", got)
	}

	skills, ok := tax.Skills("Languages")
	if !ok {
		t.Fatalf("expected Languages category")
	}
	if !reflect.DeepEqual(skills, []string{"Python", "Java"}) {
		t.Fatalf("unexpected skills: %v", skills)
	}
}

func TestLoadYAMLCollapsesDuplicateSkills(t *testing.T) {
	tax, err := Load(filepath.Join("testdata", "skills.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := tax.Categories(); !reflect.DeepEqual(got, []string{"Web", "Languages"}) {
		t.Fatalf("unexpected categories: %v", got)
	}

	skills, _ := tax.Skills("Languages")
	if !reflect.DeepEqual(skills, []string{"Python", "Java"}) {
		t.Fatalf("expected duplicate to collapse, got %v", skills)
	}

	if tax.Len() != 2 || tax.SkillCount() != 4 {
		t.Fatalf("unexpected sizes: len=%d skills=%d", tax.Len(), tax.SkillCount())
	}
}

func TestSkillsReturnsCopy(t *testing.T) {
	tax, err := New([]Category{{Name: "Languages", Skills: []string{"Go"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	skills, _ := tax.Skills("Languages")
	skills[0] = "mutated"

	again, _ := tax.Skills("Languages")
	if again[0] != "Go" {
		t.Fatalf("taxonomy was mutated through accessor: %v", again)
	}

	if _, ok := tax.Skills("Missing"); ok {
		t.Fatalf("expected unknown category to be reported absent")
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty document", input: ""},
		{name: "empty mapping", input: "{}"},
		{name: "list root", input: `["Python"]`},
		{name: "skills not a list", input: `{"Languages": "Python"}`},
		{name: "non string skill", input: `{"Languages": ["Python", 3]}`},
		{name: "blank skill", input: `{"Languages": ["Python", "  "]}`},
		{name: "blank category", input: `{" ": ["Python"]}`},
		{name: "duplicate category", input: "Languages: [Python]\n\"Languages \": [Java]\n"},
		{name: "malformed", input: `{"Languages": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.input)); err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
		})
	}
}

func TestParseEmptyReportsErrEmpty(t *testing.T) {
	if _, err := Parse([]byte("{}")); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNilTaxonomyAccessors(t *testing.T) {
	var tax *Taxonomy
	if tax.Len() != 0 || tax.SkillCount() != 0 || tax.Categories() != nil {
		t.Fatalf("expected zero values from nil taxonomy")
	}
	tax.Each(func(string, []string) { t.Fatalf("callback must not run") })
}

func TestParseKeepsPaddedSkills(t *testing.T) {
	tax, err := Parse([]byte(`{"Languages": [" R ", "Go", " R ", "R"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	skills, _ := tax.Skills("Languages")
	if !reflect.DeepEqual(skills, []string{" R ", "Go", "R"}) {
		t.Fatalf("expected skills kept as written, got %q", skills)
	}
}

package spinner

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewThesaurusValidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entries map[string][]string
		wantErr bool
	}{
		{name: "ok", entries: map[string][]string{"Fast": {"quick"}}},
		{name: "empty alternatives", entries: map[string][]string{"fast": {}}, wantErr: true},
		{name: "blank alternative", entries: map[string][]string{"fast": {"quick", " "}}, wantErr: true},
		{name: "blank word", entries: map[string][]string{" ": {"x"}}, wantErr: true},
		{name: "case duplicate", entries: map[string][]string{"fast": {"a"}, "FAST": {"b"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewThesaurus(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewThesaurus() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewThesaurusCopiesInput(t *testing.T) {
	t.Parallel()

	src := map[string][]string{"Fast": {"quick"}}
	th, err := NewThesaurus(src)
	if err != nil {
		t.Fatalf("NewThesaurus: %v", err)
	}
	src["Fast"][0] = "mutated"

	alts, ok := th.Lookup("fast")
	if !ok || alts[0] != "quick" {
		t.Fatalf("thesaurus changed after source mutation: %v", alts)
	}
}

func TestLoadThesaurus(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.yaml")
	doc := "schnell:\n  - rasch\n  - flink\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	th, err := LoadThesaurus(path)
	if err != nil {
		t.Fatalf("LoadThesaurus: %v", err)
	}
	if th.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", th.Len())
	}
	if got := New(th, &fixedChooser{picks: []int{1}}).Spin("Schnell!"); got != "Flink!" {
		t.Fatalf("unexpected spin: %q", got)
	}
}

func TestDefaultThesaurus(t *testing.T) {
	t.Parallel()

	th := DefaultThesaurus()
	if th.Len() != 14 {
		t.Fatalf("expected 14 entries, got %d", th.Len())
	}
	if _, ok := th.Lookup("quality"); !ok {
		t.Fatalf("expected quality entry")
	}
}

package spinner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Thesaurus maps a lower-case word to its ordered, non-empty alternatives.
// Values are immutable once built.
type Thesaurus struct {
	entries map[string][]string
}

// NewThesaurus copies and validates entries; keys are lower-cased.
func NewThesaurus(entries map[string][]string) (Thesaurus, error) {
	copied := make(map[string][]string, len(entries))
	for word, alts := range entries {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" {
			return Thesaurus{}, fmt.Errorf("thesaurus: empty word")
		}
		if len(alts) == 0 {
			return Thesaurus{}, fmt.Errorf("thesaurus: %q has no alternatives", word)
		}
		if _, dup := copied[key]; dup {
			return Thesaurus{}, fmt.Errorf("thesaurus: duplicate word %q", key)
		}
		list := make([]string, 0, len(alts))
		for _, alt := range alts {
			alt = strings.TrimSpace(alt)
			if alt == "" {
				return Thesaurus{}, fmt.Errorf("thesaurus: %q has an empty alternative", word)
			}
			list = append(list, alt)
		}
		copied[key] = list
	}
	return Thesaurus{entries: copied}, nil
}

// LoadThesaurus reads a YAML document of the form `word: [alt, alt]`.
func LoadThesaurus(path string) (Thesaurus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Thesaurus{}, fmt.Errorf("read thesaurus: %w", err)
	}
	var entries map[string][]string
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return Thesaurus{}, fmt.Errorf("parse thesaurus %s: %w", path, err)
	}
	return NewThesaurus(entries)
}

// Lookup returns the alternatives for a lower-case word.
func (t Thesaurus) Lookup(word string) ([]string, bool) {
	alts, ok := t.entries[word]
	return alts, ok
}

// Len reports the number of words in the table.
func (t Thesaurus) Len() int {
	return len(t.entries)
}

// DefaultThesaurus is the built-in English table.
func DefaultThesaurus() Thesaurus {
	th, err := NewThesaurus(map[string][]string{
		"vital":     {"essential", "crucial", "fundamental", "imperative"},
		"improve":   {"enhance", "boost", "refine", "better"},
		"helpful":   {"beneficial", "useful", "advantageous", "valuable"},
		"smart":     {"intelligent", "clever", "shrewd", "astute"},
		"fast":      {"quick", "rapid", "swift", "speedy"},
		"increase":  {"expand", "grow", "escalate", "augment"},
		"tool":      {"software", "application", "platform", "system"},
		"method":    {"strategy", "approach", "technique", "process"},
		"best":      {"top", "finest", "ultimate", "premier"},
		"global":    {"worldwide", "international", "universal", "comprehensive"},
		"simple":    {"easy", "straightforward", "uncomplicated", "effortless"},
		"effective": {"efficient", "productive", "successful", "potent"},
		"future":    {"perspective", "outlook", "potential", "forthcoming"},
		"quality":   {"standard", "excellence", "caliber", "grade"},
	})
	if err != nil {
		panic(err)
	}
	return th
}

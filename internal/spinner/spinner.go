package spinner

import (
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chooser picks an index in [0, n).
type Chooser interface {
	IntN(n int) int
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int { return rand.IntN(n) }

// Spinner rewrites text by swapping known words for a random synonym.
type Spinner struct {
	thesaurus Thesaurus
	chooser   Chooser
}

// New builds a spinner; a nil chooser uses the process-wide random source.
func New(th Thesaurus, ch Chooser) *Spinner {
	if ch == nil {
		ch = globalChooser{}
	}
	return &Spinner{thesaurus: th, chooser: ch}
}

// Spin returns text with every recognised word replaced. Separators,
// punctuation, and unknown words pass through untouched.
func (s *Spinner) Spin(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, token := range tokenize(text) {
		b.WriteString(s.replace(token))
	}
	return b.String()
}

func (s *Spinner) replace(token string) string {
	alts, ok := s.thesaurus.Lookup(strings.ToLower(token))
	if !ok {
		return token
	}
	return matchLeadingCase(token, alts[s.chooser.IntN(len(alts))])
}

// tokenize splits on word boundaries: alternating runs of word and non-word runes.
func tokenize(text string) []string {
	var tokens []string
	start := 0
	prevWord := false
	for i, r := range text {
		word := isWordRune(r)
		if i > 0 && word != prevWord {
			tokens = append(tokens, text[start:i])
			start = i
		}
		prevWord = word
	}
	return append(tokens, text[start:])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// matchLeadingCase upper-cases the replacement's first rune when the source starts upper-case.
func matchLeadingCase(source, target string) string {
	first, _ := utf8.DecodeRuneInString(source)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return target
	}
	lead, size := utf8.DecodeRuneInString(target)
	return string(unicode.ToUpper(lead)) + target[size:]
}

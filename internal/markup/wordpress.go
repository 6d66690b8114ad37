// Package markup renders spun article text as WordPress post HTML.
package markup

import "strings"

// FormatForWordPress builds the post body: a keyword paragraph followed by one
// paragraph per non-blank body line. The title travels separately in the post
// request and is ignored here.
func FormatForWordPress(title, body, keywords string) string {
	_ = title

	var b strings.Builder
	b.WriteString("<p><em>Keywords: ")
	b.WriteString(strings.Join(SplitKeywords(keywords), ", "))
	b.WriteString("</em></p>\n")

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString("\n<p>")
		b.WriteString(line)
		b.WriteString("</p>")
	}
	return b.String()
}

// SplitKeywords returns the trimmed, non-empty comma separated terms.
func SplitKeywords(keywords string) []string {
	terms := make([]string, 0)
	for _, term := range strings.Split(keywords, ",") {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

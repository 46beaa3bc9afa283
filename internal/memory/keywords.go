package memory

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywords = 10

// stopwords are dropped before frequency ranking.
var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"from": true, "have": true, "has": true, "had": true, "was": true,
	"were": true, "are": true, "is": true, "been": true, "being": true,
	"will": true, "would": true, "could": true, "should": true, "for": true,
	"but": true, "not": true, "you": true, "your": true, "they": true,
	"them": true, "their": true, "then": true, "than": true, "into": true,
	"over": true, "when": true, "what": true, "which": true, "while": true,
}

// ExtractKeywords returns up to 10 salient terms from free text, ranked by
// descending frequency with ties kept in first-encountered order. The
// function is pure: identical input always yields the identical list.
func ExtractKeywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	counts := make(map[string]int)
	var order []string
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 3 || stopwords[token] {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

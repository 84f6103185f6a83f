package robots

import (
	"strings"
)

// Parse reads robots.txt text into a new trie. Only the rule blocks
// addressed to "user-agent: *" are used. A block ends at the first line
// that is neither an allow nor a disallow directive (a blank line, another
// user-agent, sitemap...). Matching is done on lower-cased text.
func Parse(text string, defaultAllow bool) *Trie {
	trie := NewTrie(defaultAllow)
	ParseInto(text, trie)
	return trie
}

// ParseInto adds the rules from text to an existing trie and returns the
// number of rules added.
func ParseInto(text string, trie *Trie) int {
	added := 0
	reading := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.ToLower(line)

		if strings.Contains(line, "user-agent") && directiveValue(line) == "*" {
			reading = true
			continue
		}

		if !reading {
			continue
		}

		switch {
		case strings.Contains(line, "disallow"):
			if trie.AddRule(directiveValue(line), Disallow) {
				added++
			}
		case strings.Contains(line, "allow"):
			if trie.AddRule(directiveValue(line), Allow) {
				added++
			}
		default:
			reading = false
		}
	}

	return added
}

// directiveValue returns the trimmed text after the first colon, or the
// whole trimmed line when there is none
func directiveValue(line string) string {
	if _, value, found := strings.Cut(line, ":"); found {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(line)
}

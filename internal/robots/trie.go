// Package robots evaluates robots.txt allow/disallow rules with a
// character trie and reads the rule blocks that apply to every agent.
package robots

const (
	wildcard  = '*'
	endAnchor = '$'
)

// RuleKind is the type of a robots.txt rule
type RuleKind int

const (
	Allow RuleKind = iota
	Disallow
)

func (k RuleKind) String() string {
	if k == Allow {
		return "allow"
	}
	return "disallow"
}

// node is one character of one or more rule patterns
type node struct {
	value    byte
	children map[byte]*node
	allow    bool
	disallow bool
}

func newNode(value byte) *node {
	return &node{value: value, children: make(map[byte]*node)}
}

// Trie holds the rules of a single domain. The most specific (longest)
// matching rule decides whether a path is allowed.
type Trie struct {
	root         *node
	defaultAllow bool
	rules        int
}

// NewTrie creates an empty trie. defaultAllow is the verdict for paths no
// rule matches.
func NewTrie(defaultAllow bool) *Trie {
	return &Trie{
		root:         newNode(0),
		defaultAllow: defaultAllow,
	}
}

// DefaultAllow reports the verdict used when no rule matches
func (t *Trie) DefaultAllow() bool {
	return t.defaultAllow
}

// Len returns the number of distinct rules added
func (t *Trie) Len() int {
	return t.rules
}

// AddRule adds pattern as an allow or disallow rule. '*' and '$' keep
// their robots.txt meaning. The pattern is used as given: callers trim it.
// Returns false when the pattern is empty or the same rule already exists.
func (t *Trie) AddRule(pattern string, kind RuleKind) bool {
	if pattern == "" {
		return false
	}

	current := t.root
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		child, ok := current.children[ch]
		if !ok {
			child = newNode(ch)
			current.children[ch] = child
		}
		current = child
	}

	switch kind {
	case Allow:
		if current.allow {
			return false
		}
		current.allow = true
	case Disallow:
		if current.disallow {
			return false
		}
		current.disallow = true
	default:
		return false
	}

	t.rules++
	return true
}

// Evaluate reports whether path may be crawled. It does not modify the trie.
func (t *Trie) Evaluate(path string) bool {
	return t.evaluate(path, t.root, t.defaultAllow)
}

// evaluate walks path down from n. verdict is the outcome of the longest
// rule matched so far.
func (t *Trie) evaluate(path string, n *node, verdict bool) bool {
	if n.disallow {
		verdict = false
	}
	if n.allow {
		verdict = true
	}

	if star, ok := n.children[wildcard]; ok {
		// '*' may swallow any number of characters, including none.
		// The first branch with an opinion other than the default wins.
		for i := 0; i <= len(path); i++ {
			if v := t.evaluate(path[i:], star, verdict); v != t.defaultAllow {
				verdict = v
				break
			}
		}
	}

	if len(path) == 0 {
		if end, ok := n.children[endAnchor]; ok {
			if end.allow {
				return true
			}
			if end.disallow {
				return false
			}
		}
		// A rule ending exactly here beats the default, whatever else
		// this node says
		if t.defaultAllow && n.disallow {
			return false
		}
		if !t.defaultAllow && n.allow {
			return true
		}
		return verdict
	}

	if child, ok := n.children[path[0]]; ok {
		return t.evaluate(path[1:], child, verdict)
	}

	return verdict
}

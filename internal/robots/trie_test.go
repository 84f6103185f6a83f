package robots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrie_DefaultAllow(t *testing.T) {
	tests := []struct {
		name  string
		rules map[string]RuleKind
		path  string
		want  bool
	}{
		{"exact disallow", map[string]RuleKind{"/a": Disallow}, "/a", false},
		{"longer path disallowed", map[string]RuleKind{"/a": Disallow}, "/aaaa", false},
		{"exact with siblings", map[string]RuleKind{"/aa": Disallow, "/ab": Disallow}, "/ab", false},
		{"longer with siblings", map[string]RuleKind{"/aa": Disallow, "/ab": Disallow}, "/abc", false},
		{"unmatched path", map[string]RuleKind{"/aa": Disallow, "/ab": Disallow}, "/f", true},
		{"allow beside disallow", map[string]RuleKind{"/ab": Allow, "/ac": Disallow}, "/abb", true},
		{"longer allow wins", map[string]RuleKind{"/admin": Disallow, "/admin/public": Allow}, "/admin/public/page", true},
		{"longer allow exact", map[string]RuleKind{"/a": Disallow, "/ab": Allow}, "/ab", true},
		{"shorter disallow still applies", map[string]RuleKind{"/admin": Disallow, "/admin/public": Allow}, "/admin/private", false},
		{"no rules", map[string]RuleKind{}, "/anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trie := NewTrie(true)
			for pattern, kind := range tt.rules {
				trie.AddRule(pattern, kind)
			}
			assert.Equal(t, tt.want, trie.Evaluate(tt.path))
		})
	}
}

func TestTrie_SameRuleBothKinds(t *testing.T) {
	tests := []struct {
		name         string
		defaultAllow bool
		path         string
		want         bool
	}{
		{"default allow, exact path", true, "/a", false},
		{"default allow, longer path", true, "/ab", true},
		{"default disallow, exact path", false, "/a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trie := NewTrie(tt.defaultAllow)
			assert.True(t, trie.AddRule("/a", Allow))
			assert.True(t, trie.AddRule("/a", Disallow))
			assert.Equal(t, tt.want, trie.Evaluate(tt.path))
		})
	}
}

func TestTrie_DefaultDisallow(t *testing.T) {
	tests := []struct {
		name  string
		rules map[string]RuleKind
		path  string
		want  bool
	}{
		{"exact allow", map[string]RuleKind{"/a": Allow}, "/a", true},
		{"longer path allowed", map[string]RuleKind{"/a": Allow}, "/aaaa", true},
		{"exact with siblings", map[string]RuleKind{"/aa": Allow, "/ab": Allow}, "/ab", true},
		{"longer with siblings", map[string]RuleKind{"/aa": Allow, "/ab": Allow}, "/abc", true},
		{"unmatched path", map[string]RuleKind{"/aa": Disallow, "/ab": Disallow}, "/f", false},
		{"disallow beside allow", map[string]RuleKind{"/ab": Allow, "/ac": Disallow}, "/aca", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trie := NewTrie(false)
			for pattern, kind := range tt.rules {
				trie.AddRule(pattern, kind)
			}
			assert.Equal(t, tt.want, trie.Evaluate(tt.path))
		})
	}
}

func TestTrie_Wildcard(t *testing.T) {
	trie := NewTrie(true)
	trie.AddRule("/a*b", Disallow)

	for _, path := range []string{"/ab", "/aXb", "/aXXXXXXXb", "/aXbY"} {
		assert.False(t, trie.Evaluate(path), path)
	}
	for _, path := range []string{"/a", "/aX", "/b", "/"} {
		assert.True(t, trie.Evaluate(path), path)
	}
}

func TestTrie_TrailingWildcard(t *testing.T) {
	trie := NewTrie(true)
	trie.AddRule("/temp*", Disallow)

	assert.False(t, trie.Evaluate("/temp"))
	assert.False(t, trie.Evaluate("/temporary/data"))
	assert.True(t, trie.Evaluate("/tem"))
}

func TestTrie_EndAnchor(t *testing.T) {
	trie := NewTrie(true)
	trie.AddRule("/ab$", Disallow)

	assert.False(t, trie.Evaluate("/ab"))
	assert.True(t, trie.Evaluate("/abX"))
	assert.True(t, trie.Evaluate("/a"))
}

func TestTrie_WildcardWithEndAnchor(t *testing.T) {
	trie := NewTrie(true)
	trie.AddRule("/*.php$", Disallow)

	assert.False(t, trie.Evaluate("/index.php"))
	assert.False(t, trie.Evaluate("/dir/page.php"))
	assert.True(t, trie.Evaluate("/index.php5"))
	assert.True(t, trie.Evaluate("/index.html"))
}

func TestTrie_EndAnchorAllowUnderDefaultDisallow(t *testing.T) {
	trie := NewTrie(false)
	trie.AddRule("/$", Allow)

	assert.True(t, trie.Evaluate("/"))
	assert.False(t, trie.Evaluate("/page"))
}

func TestTrie_AddRule(t *testing.T) {
	trie := NewTrie(true)

	assert.True(t, trie.AddRule("/a", Disallow))
	assert.False(t, trie.AddRule("/a", Disallow), "duplicate rule")
	assert.True(t, trie.AddRule("/a", Allow), "same pattern, other kind")
	assert.False(t, trie.AddRule("", Disallow), "empty pattern")
	assert.Equal(t, 2, trie.Len())
	assert.True(t, trie.DefaultAllow())
}

func TestTrie_EvaluateDoesNotMutate(t *testing.T) {
	trie := NewTrie(true)
	trie.AddRule("/a*b", Disallow)

	first := trie.Evaluate("/aXb")
	second := trie.Evaluate("/aXb")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, trie.Len())
}

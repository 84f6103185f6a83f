package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubdomainLimiter_CapsHostsPerRoot(t *testing.T) {
	sl := NewSubdomainLimiter(2)

	assert.True(t, sl.Add("a.example.com"))
	assert.True(t, sl.Add("b.example.com"))
	assert.False(t, sl.CanAdd("c.example.com"))
	assert.False(t, sl.Add("c.example.com"))

	// Known hosts and other roots are unaffected
	assert.True(t, sl.CanAdd("a.example.com"))
	assert.True(t, sl.Add("a.example.com"))
	assert.True(t, sl.Add("www.example.org"))

	assert.Equal(t, 2, sl.Count("example.com"))
	assert.Equal(t, 1, sl.Count("example.org"))
}

func TestSubdomainLimiter_Unlimited(t *testing.T) {
	sl := NewSubdomainLimiter(0)

	for _, host := range []string{"a.example.com", "b.example.com", "c.example.com", "d.example.com"} {
		assert.True(t, sl.CanAdd(host))
		assert.True(t, sl.Add(host))
	}
	assert.Equal(t, 4, sl.Count("example.com"))
}

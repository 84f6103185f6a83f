package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "anchors in document order",
			html: `<html><body><a href="/one">1</a><p><a href="two">2</a></p><a href="https://other.com/x">3</a></body></html>`,
			want: []string{"/one", "two", "https://other.com/x"},
		},
		{
			name: "anchor without href",
			html: `<a name="top">top</a><a href="/kept">k</a>`,
			want: []string{"/kept"},
		},
		{
			name: "meta nofollow suppresses page",
			html: `<html><head><meta name="robots" content="nofollow"></head><body><a href="/one">1</a></body></html>`,
			want: []string{},
		},
		{
			name: "meta content must match exactly",
			html: `<html><head><meta name="robots" content="noindex, nofollow"></head><body><a href="/one">1</a></body></html>`,
			want: []string{"/one"},
		},
		{
			name: "rel nofollow anchor skipped",
			html: `<a href="/ad" rel="sponsored nofollow">ad</a><a href="/keep">k</a>`,
			want: []string{"/keep"},
		},
		{
			name: "legacy ref nofollow anchor skipped",
			html: `<a href="/ad" ref="nofollow">ad</a><a href="/keep">k</a>`,
			want: []string{"/keep"},
		},
		{
			name: "no links",
			html: `<html><body><p>plain</p></body></html>`,
			want: []string{},
		},
		{
			name: "empty body",
			html: ``,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLinks([]byte(tt.html)))
		})
	}
}

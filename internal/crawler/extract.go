package crawler

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const noFollow = "nofollow"

// LinkExtractor returns the hrefs a page allows the crawler to follow
type LinkExtractor func(body []byte) []string

// ExtractLinks returns the href of every followable anchor in document
// order. A <meta> whose content is exactly "nofollow" suppresses every
// link on the page. Anchors marked rel="nofollow" (or the legacy
// ref="nofollow") are skipped.
func ExtractLinks(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	pageNoFollow := false
	doc.Find("meta").EachWithBreak(func(_ int, meta *goquery.Selection) bool {
		if content, ok := meta.Attr("content"); ok && content == noFollow {
			pageNoFollow = true
			return false
		}
		return true
	})
	if pageNoFollow {
		return []string{}
	}

	links := make([]string, 0)
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if isNoFollow(a) {
			return
		}
		if href, ok := a.Attr("href"); ok {
			links = append(links, href)
		}
	})

	return links
}

func isNoFollow(a *goquery.Selection) bool {
	if ref, ok := a.Attr("ref"); ok && ref == noFollow {
		return true
	}
	if rel, ok := a.Attr("rel"); ok {
		for _, token := range strings.Fields(strings.ToLower(rel)) {
			if token == noFollow {
				return true
			}
		}
	}
	return false
}

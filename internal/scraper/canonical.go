package scraper

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultOrigin prefixes relative hrefs found on listing pages.
	DefaultOrigin = "https://finance.naver.com"
	// DefaultArticleHost serves the direct article pages used as dedup keys.
	DefaultArticleHost = "n.news.naver.com"

	redirectPath = "news_read.naver"
)

// CanonicalURL converts a listing redirect URL such as
// /news/news_read.naver?article_id=0005240919&office_id=015 into the direct
// article URL https://n.news.naver.com/mnews/article/015/0005240919.
// Anything else, including redirect URLs missing either id, is returned as is.
func CanonicalURL(raw string) string {
	return canonicalURL(raw, DefaultArticleHost)
}

func canonicalURL(raw, articleHost string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Path, redirectPath) {
		return raw
	}

	q := u.Query()
	articleID := q.Get("article_id")
	officeID := q.Get("office_id")
	if articleID == "" || officeID == "" {
		return raw
	}

	return fmt.Sprintf("https://%s/mnews/article/%s/%s", articleHost, officeID, articleID)
}

// absoluteURL resolves a possibly relative href against the listing origin.
func absoluteURL(origin *url.URL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimRight(origin.String(), "/") + href
	}

	return origin.ResolveReference(ref).String()
}

package news

import "strings"

// MatchKeywords returns the articles whose title contains at least one of
// the keywords, case-insensitively. Article order is preserved and each
// result lists every keyword that hit, in keyword order.
func MatchKeywords(articles []Article, keywords []string) []MatchedArticle {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	var matched []MatchedArticle
	for _, a := range articles {
		title := strings.ToLower(a.Title)

		var hits []string
		for i, k := range lowered {
			if strings.Contains(title, k) {
				hits = append(hits, keywords[i])
			}
		}

		if len(hits) > 0 {
			matched = append(matched, MatchedArticle{Article: a, MatchedKeywords: hits})
		}
	}

	return matched
}

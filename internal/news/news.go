package news

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Article is one entry scraped from a listing page. PublishedAt is kept
// exactly as the source formats it.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"time"`
	Source      string `json:"source"`
}

// MatchedArticle is an article whose title hit at least one keyword.
// MatchedKeywords follows the order of the keyword list it was matched against.
type MatchedArticle struct {
	Article
	MatchedKeywords []string `json:"matched_keywords"`
}

// Keyword is an operator-maintained search term.
type Keyword struct {
	ID        int64     `db:"id" json:"id"`
	Text      string    `db:"keyword" json:"keyword"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SentRecord is one dedup ledger entry. Title is empty when the article
// was marked without one.
type SentRecord struct {
	ID     int64     `db:"id" json:"id"`
	URL    string    `db:"news_url" json:"url"`
	Title  string    `db:"news_title" json:"title"`
	SentAt time.Time `db:"sent_at" json:"sent_at"`
}

// Alert is a history row written once per newly accepted match.
type Alert struct {
	ID              int64     `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	URL             string    `db:"url" json:"url"`
	MatchedKeywords string    `db:"matched_keywords" json:"matched_keywords"`
	NewsTime        string    `db:"news_time" json:"news_time"`
	NewsSource      string    `db:"news_source" json:"news_source"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// KeywordSeparator joins matched keywords when an alert is persisted.
const KeywordSeparator = ", "

// JoinKeywords renders matched keywords the way alerts store them.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, KeywordSeparator)
}

// ShortTitle trims a title to 50 display columns for log lines.
func ShortTitle(title string) string {
	return runewidth.Truncate(title, 50, "...")
}

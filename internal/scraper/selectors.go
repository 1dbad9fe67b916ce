package scraper

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors describes where articles live on a listing page. The upstream
// markup changes from time to time, so every pattern can be overridden.
type Selectors struct {
	// Primary matches the title links of the regular listing layout.
	Primary string `yaml:"primary"`
	// Summary matches the sibling element holding timestamp and press name.
	Summary string `yaml:"summary"`
	Time    string `yaml:"time"`
	Source  string `yaml:"source"`
	// Fallbacks are tried in order on page 1 when Primary finds nothing.
	Fallbacks []string `yaml:"fallbacks"`
	// MinFallbackTitleLen drops fallback links with titles this short or
	// shorter (navigation chrome).
	MinFallbackTitleLen int `yaml:"min_fallback_title_len"`
}

// DefaultSelectors returns the patterns for the finance.naver.com listing.
func DefaultSelectors() Selectors {
	return Selectors{
		Primary: "dd.articleSubject a, dt.articleSubject a",
		Summary: "dd.articleSummary",
		Time:    ".wdate",
		Source:  ".press",
		Fallbacks: []string{
			"div.mainNewsList li a",
			"table.type5 td.title a",
			"div.news_area a.tit",
		},
		MinFallbackTitleLen: 5,
	}
}

// merge fills every empty field of s from def.
func (s Selectors) merge(def Selectors) Selectors {
	if s.Primary == "" {
		s.Primary = def.Primary
	}
	if s.Summary == "" {
		s.Summary = def.Summary
	}
	if s.Time == "" {
		s.Time = def.Time
	}
	if s.Source == "" {
		s.Source = def.Source
	}
	if len(s.Fallbacks) == 0 {
		s.Fallbacks = def.Fallbacks
	}
	if s.MinFallbackTitleLen <= 0 {
		s.MinFallbackTitleLen = def.MinFallbackTitleLen
	}
	return s
}

// LoadSelectors reads selector overrides from a YAML file:
//
//	primary: "dd.articleSubject a"
//	fallbacks:
//	  - "div.mainNewsList li a"
//
// An empty path returns the defaults.
func LoadSelectors(path string) (Selectors, error) {
	if path == "" {
		return DefaultSelectors(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Selectors{}, fmt.Errorf("open selectors file: %w", err)
	}
	defer f.Close()

	var s Selectors
	if err := yaml.NewDecoder(f).Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Selectors{}, fmt.Errorf("decode selectors file %s: %w", path, err)
	}

	return s.merge(DefaultSelectors()), nil
}

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_FixedPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"identical", "삼성전자 실적 발표", "삼성전자 실적 발표", 1.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"shifted", "abcd", "bcde", 0.75},
		{"kitten sitting", "kitten", "sitting", 8.0 / 13.0},
		{"appended rune", "삼성전자 실적 발표 예정", "삼성전자 실적 발표 예정일", 26.0 / 27.0},
		{"one rune edited", "삼성전자 실적 발표 예정", "삼성전자 실적 발표 예고", 24.0 / 26.0},
		{"case sensitive", "ABC", "abc", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"abcd", "bcde"},
		{"abcabc", "cbacba"},
	}

	for _, p := range pairs {
		assert.InDelta(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), 1e-9, "%q vs %q", p[0], p[1])
	}
}

func TestRatio_UnrelatedTitleBelowThreshold(t *testing.T) {
	assert.Less(t, Ratio("삼성전자 실적 발표 예정", "완전히 다른 뉴스 제목입니다"), 0.8)
}

package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSelectors_EmptyPathReturnsDefaults(t *testing.T) {
	s, err := LoadSelectors("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSelectors(), s)
}

func TestLoadSelectors_OverridesKeepDefaultsForEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	content := `primary: "ul.newsList li.title a"
fallbacks:
  - "div.headline a"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadSelectors(path)
	require.NoError(t, err)

	def := DefaultSelectors()
	assert.Equal(t, "ul.newsList li.title a", s.Primary)
	assert.Equal(t, []string{"div.headline a"}, s.Fallbacks)
	assert.Equal(t, def.Summary, s.Summary)
	assert.Equal(t, def.Time, s.Time)
	assert.Equal(t, def.Source, s.Source)
	assert.Equal(t, def.MinFallbackTitleLen, s.MinFallbackTitleLen)
}

func TestLoadSelectors_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := LoadSelectors(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSelectors(), s)
}

func TestLoadSelectors_Errors(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("primary: [unclosed"), 0o644))
	_, err = LoadSelectors(path)
	assert.Error(t, err)
}

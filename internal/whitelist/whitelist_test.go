package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/golang-cafe/remotehq/internal/settings"
)

func fuzzy(titles ...string) settings.Settings {
	return settings.Settings{WhitelistedTitles: titles, HarvestingMode: settings.ModeFuzzy}
}

func exact(titles ...string) settings.Settings {
	return settings.Settings{WhitelistedTitles: titles, HarvestingMode: settings.ModeExact}
}

func TestFuzzyMatchesWholePhrase(t *testing.T) {
	assert.True(t, IsJobWhitelisted("Staff Engineer", fuzzy("staff engineer")))
	assert.True(t, IsJobWhitelisted("Senior Staff Engineer, Platform", fuzzy("staff engineer")))
	assert.True(t, IsJobWhitelisted("STAFF ENGINEER", fuzzy("staff engineer")))
}

func TestFuzzyRejectsInsertedWords(t *testing.T) {
	assert.False(t, IsJobWhitelisted("Staff Software Engineer", fuzzy("staff engineer")))
}

func TestFuzzyRespectsWordBoundaries(t *testing.T) {
	assert.False(t, IsJobWhitelisted("distaff", fuzzy("staff")))
	assert.False(t, IsJobWhitelisted("staffing", fuzzy("staff")))
	assert.True(t, IsJobWhitelisted("Staff (Remote)", fuzzy("staff")))
}

func TestFuzzyEscapesPhrase(t *testing.T) {
	assert.True(t, IsJobWhitelisted("Senior Node.js Engineer", fuzzy("node.js engineer")))
	assert.False(t, IsJobWhitelisted("Senior Nodexjs Engineer", fuzzy("node.js engineer")))
}

func TestExactMatch(t *testing.T) {
	assert.True(t, IsJobWhitelisted(" Staff Engineer  ", exact("staff engineer")))
	assert.True(t, IsJobWhitelisted("staff engineer", exact("  Staff Engineer ")))
	assert.False(t, IsJobWhitelisted("Senior Staff Engineer", exact("staff engineer")))
}

func TestEmptyWhitelistMatchesNothing(t *testing.T) {
	for _, s := range []settings.Settings{fuzzy(), exact(), fuzzy("", "  ")} {
		m := New(s)
		assert.Zero(t, m.Len())
		assert.False(t, m.Match("Staff Engineer"))
		assert.False(t, m.Match(""))
	}
}

func TestDefaultWhitelist(t *testing.T) {
	m := New(settings.Default())
	assert.True(t, m.Match("Senior Software Engineer"))
	assert.False(t, m.Match("Account Executive"))
}

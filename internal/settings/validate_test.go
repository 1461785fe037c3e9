package settings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modePtr(m Mode) *Mode { return &m }

func titlesPtr(t ...string) *[]string { return &t }

func TestValidateCanonicalisesTitles(t *testing.T) {
	u, err := Update{WhitelistedTitles: titlesPtr("  Staff Engineer ", "SRE", "staff engineer", "go")}.Validate()
	require.NoError(t, err)
	assert.Equal(t, []string{"staff engineer", "sre", "go"}, *u.WhitelistedTitles)
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	_, err := Update{HarvestingMode: modePtr("loose")}.Validate()
	require.Error(t, err)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "harvestingMode", verr.Field)
}

func TestValidateRejectsEmptyAndLongEntries(t *testing.T) {
	_, err := Update{WhitelistedTitles: titlesPtr("go", "   ")}.Validate()
	assert.ErrorAs(t, err, &ValidationError{})

	_, err = Update{WhitelistedTitles: titlesPtr(strings.Repeat("a", MaxTitleLength+1))}.Validate()
	assert.ErrorAs(t, err, &ValidationError{})

	tooMany := make([]string, MaxWhitelistedTitles+1)
	for i := range tooMany {
		tooMany[i] = "t"
	}
	_, err = Update{WhitelistedTitles: &tooMany}.Validate()
	assert.ErrorAs(t, err, &ValidationError{})
}

func TestValidateRejectsEmptyUpdate(t *testing.T) {
	_, err := Update{}.Validate()
	assert.Error(t, err)
}

func TestValidateAllowsEmptyWhitelist(t *testing.T) {
	u, err := Update{WhitelistedTitles: titlesPtr()}.Validate()
	require.NoError(t, err)
	assert.Empty(t, *u.WhitelistedTitles)
}

func TestApplyLeavesMissingFieldsUntouched(t *testing.T) {
	s := Default()
	next := s.Apply(Update{HarvestingMode: modePtr(ModeExact)})
	assert.Equal(t, ModeExact, next.HarvestingMode)
	assert.Equal(t, DefaultWhitelistedTitles, next.WhitelistedTitles)
}

func TestDefaultReturnsACopy(t *testing.T) {
	s := Default()
	s.WhitelistedTitles[0] = "changed"
	assert.Equal(t, "software", DefaultWhitelistedTitles[0])
}

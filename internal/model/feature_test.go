package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresPremium(t *testing.T) {
	assert.False(t, FeatureBasicCategories.RequiresPremium())
	assert.False(t, FeatureBasicReports.RequiresPremium())
	assert.True(t, FeatureAdvancedReports.RequiresPremium())
	assert.True(t, FeatureExportUnlimited.RequiresPremium())
	assert.True(t, FeaturePrioritySupport.RequiresPremium())
}

func TestParseFeature(t *testing.T) {
	f, ok := ParseFeature("advanced_reports")
	assert.True(t, ok)
	assert.Equal(t, FeatureAdvancedReports, f)

	_, ok = ParseFeature("time_travel")
	assert.False(t, ok)
}

func TestCodePurposeValid(t *testing.T) {
	for _, p := range []CodePurpose{PurposeEmailVerification, PurposePasswordReset, PurposeEmailChange, PurposePasswordChange} {
		assert.True(t, p.Valid(), "purpose %s", p)
	}
	assert.False(t, CodePurpose("mystery").Valid())
}

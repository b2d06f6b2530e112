package model

// Feature is the closed set of product features gated by plan type.
// Using a typed constant set keeps unknown feature names out of the
// premium checks at compile time.
type Feature string

const (
	FeatureBasicCategories   Feature = "basic_categories"
	FeatureBasicTransactions Feature = "basic_transactions"
	FeatureBasicReports      Feature = "basic_reports"
	FeatureAdvancedEmojis    Feature = "advanced_emojis"
	FeatureCustomCategories  Feature = "custom_categories"
	FeatureAdvancedReports   Feature = "advanced_reports"
	FeatureExportUnlimited   Feature = "export_unlimited"
	FeaturePrioritySupport   Feature = "priority_support"
)

var premiumFeatures = map[Feature]bool{
	FeatureAdvancedEmojis:   true,
	FeatureCustomCategories: true,
	FeatureAdvancedReports:  true,
	FeatureExportUnlimited:  true,
	FeaturePrioritySupport:  true,
}

// AllFeatures lists every known feature in catalogue order.
var AllFeatures = []Feature{
	FeatureBasicCategories,
	FeatureBasicTransactions,
	FeatureBasicReports,
	FeatureAdvancedEmojis,
	FeatureCustomCategories,
	FeatureAdvancedReports,
	FeatureExportUnlimited,
	FeaturePrioritySupport,
}

// RequiresPremium reports whether the feature is only available to
// users with an active premium plan.
func (f Feature) RequiresPremium() bool {
	return premiumFeatures[f]
}

// ParseFeature maps a wire string to a known feature.
func ParseFeature(s string) (Feature, bool) {
	f := Feature(s)
	for _, known := range AllFeatures {
		if f == known {
			return f, true
		}
	}
	return "", false
}

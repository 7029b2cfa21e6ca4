package taxonomy

import "zeno-access/internal/role/domain"

// Feature names a boolean capability consumed by dashboard panels.
type Feature string

const (
	FeatureSwitchBranches  Feature = "canSwitchBranches"
	FeatureManageUsers     Feature = "canManageUsers"
	FeatureViewAllData     Feature = "canViewAllData"
	FeatureExport          Feature = "canExport"
	FeatureEditSettings    Feature = "canEditSettings"
	FeatureViewMetrics     Feature = "canViewMetrics"
	FeatureSendSMS         Feature = "canSendSMS"
	FeatureManageCampaigns Feature = "canManageCampaigns"
	FeatureViewReviews     Feature = "canViewReviews"
	FeatureAccessMobile    Feature = "canAccessMobile"
)

// Features lists every known feature in table order.
var Features = []Feature{
	FeatureSwitchBranches,
	FeatureManageUsers,
	FeatureViewAllData,
	FeatureExport,
	FeatureEditSettings,
	FeatureViewMetrics,
	FeatureSendSMS,
	FeatureManageCampaigns,
	FeatureViewReviews,
	FeatureAccessMobile,
}

var featureTable = map[domain.OrgRole]map[Feature]bool{
	domain.OrgRoleOwner: {
		FeatureSwitchBranches:  true,
		FeatureManageUsers:     true,
		FeatureViewAllData:     true,
		FeatureExport:          true,
		FeatureEditSettings:    true,
		FeatureViewMetrics:     true,
		FeatureSendSMS:         true,
		FeatureManageCampaigns: true,
		FeatureViewReviews:     true,
		FeatureAccessMobile:    true,
	},
	domain.OrgRoleManager: {
		FeatureSwitchBranches:  false,
		FeatureManageUsers:     false,
		FeatureViewAllData:     false,
		FeatureExport:          false,
		FeatureEditSettings:    false,
		FeatureViewMetrics:     true,
		FeatureSendSMS:         true,
		FeatureManageCampaigns: false,
		FeatureViewReviews:     true,
		FeatureAccessMobile:    false,
	},
	domain.OrgRoleStaff: {
		FeatureSwitchBranches:  false,
		FeatureManageUsers:     false,
		FeatureViewAllData:     false,
		FeatureExport:          false,
		FeatureEditSettings:    false,
		FeatureViewMetrics:     false,
		FeatureSendSMS:         false,
		FeatureManageCampaigns: false,
		FeatureViewReviews:     true,
		FeatureAccessMobile:    false,
	},
}

// FeaturePermissions returns a copy of role's capability map. Unknown roles get the staff map.
func FeaturePermissions(role domain.OrgRole) map[Feature]bool {
	src := featureTable[effective(role)]
	out := make(map[Feature]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// HasFeature reports whether role has the named capability. It is false for a role outside the
// closed set and for an unknown feature.
func HasFeature(role domain.OrgRole, feature Feature) bool {
	if !role.Valid() {
		return false
	}
	return featureTable[role][feature]
}

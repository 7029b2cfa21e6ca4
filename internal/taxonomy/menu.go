// Package taxonomy holds the static permission tables keyed by organization role: navigable
// menu keys, feature capabilities, page visibility flags and branch access.
//
// Tables are built once at package init and never mutated. Every lookup is total: a role
// outside the closed set resolves to the staff entry, and the returned values are copies.
package taxonomy

import "zeno-access/internal/role/domain"

// Menu keys of the sidebar. Child keys are prefixed with their parent key.
const (
	MenuWelcome    = "welcome"
	MenuUsers      = "users"
	MenuBusinesses = "businesses"

	MenuMetrics         = "metrics"
	MenuMetricsCoupons  = "metrics-coupons"
	MenuMetricsMeta     = "metrics-meta"
	MenuMetricsGoogle   = "metrics-google"
	MenuMetricsKeywords = "metrics-keywords"
	MenuMetricsLink     = "metrics-link"
	MenuMetricsClub     = "metrics-club"
	MenuMetricsReviews  = "metrics-reviews"

	MenuSMS          = "sms"
	MenuSMSMarketing = "sms-marketing"
	MenuSMSRetention = "sms-retention"
	MenuSMSChurn     = "sms-churn"
	MenuSMSContact   = "sms-contact"

	MenuInbox   = "inbox"
	MenuReviews = "reviews"

	MenuCoupons    = "coupons"
	MenuCouponsAll = "coupons-all"

	MenuCampaigns = "campaigns"

	MenuResources        = "resources"
	MenuResourcesForms   = "resources-forms"
	MenuResourcesMAC     = "resources-mac"
	MenuResourcesPodcast = "resources-podcast"
	MenuResourcesFeature = "resources-feature"

	MenuMobile      = "mobile"
	MenuMobileKiosk = "mobile-kiosk"
	MenuMobileOcard = "mobile-ocard"
)

var (
	metricsKeys = []string{
		MenuMetrics, MenuMetricsCoupons, MenuMetricsMeta, MenuMetricsGoogle,
		MenuMetricsKeywords, MenuMetricsLink, MenuMetricsClub, MenuMetricsReviews,
	}
	smsKeys       = []string{MenuSMS, MenuSMSMarketing, MenuSMSRetention, MenuSMSChurn, MenuSMSContact}
	couponsKeys   = []string{MenuCoupons, MenuCouponsAll}
	resourcesKeys = []string{
		MenuResources, MenuResourcesForms, MenuResourcesMAC, MenuResourcesPodcast, MenuResourcesFeature,
	}
	mobileKeys = []string{MenuMobile, MenuMobileKiosk, MenuMobileOcard}
)

// menuOrder keeps the declaration order of each role's keys so MenuKeys is deterministic.
var menuOrder = map[domain.OrgRole][]string{
	domain.OrgRoleOwner: concat(
		[]string{MenuWelcome, MenuUsers, MenuBusinesses},
		metricsKeys,
		smsKeys,
		[]string{MenuInbox, MenuReviews},
		couponsKeys,
		[]string{MenuCampaigns},
		resourcesKeys,
		mobileKeys,
	),
	domain.OrgRoleManager: concat(
		[]string{MenuWelcome, MenuBusinesses},
		metricsKeys,
		smsKeys,
		[]string{MenuReviews},
		couponsKeys,
		[]string{MenuCampaigns},
	),
	domain.OrgRoleStaff: {MenuWelcome, MenuBusinesses, MenuReviews},
}

var menuSets = buildMenuSets()

func buildMenuSets() map[domain.OrgRole]map[string]struct{} {
	out := make(map[domain.OrgRole]map[string]struct{}, len(menuOrder))
	for role, keys := range menuOrder {
		set := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}
		out[role] = set
	}
	return out
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// effective maps any role outside the closed set to staff.
func effective(role domain.OrgRole) domain.OrgRole {
	if role.Valid() {
		return role
	}
	return domain.OrgRoleStaff
}

// MenuKeys returns the menu keys role may navigate to, parents and children alike.
func MenuKeys(role domain.OrgRole) []string {
	keys := menuOrder[effective(role)]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// AllowsMenu reports whether key is in role's menu permission list.
func AllowsMenu(role domain.OrgRole, key string) bool {
	_, ok := menuSets[effective(role)][key]
	return ok
}

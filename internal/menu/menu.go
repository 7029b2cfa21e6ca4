// Package menu describes the sidebar tree and gates it by organization role.
package menu

import (
	"zeno-access/internal/role/domain"
	"zeno-access/internal/taxonomy"
)

// Item is one sidebar entry. Children is nil for leaves.
type Item struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Children []Item `json:"children,omitempty"`
}

// DefaultTree returns a fresh copy of the application sidebar.
func DefaultTree() []Item {
	return []Item{
		{Key: taxonomy.MenuWelcome, Label: "Welcome"},
		{Key: taxonomy.MenuUsers, Label: "Team Members"},
		{Key: taxonomy.MenuBusinesses, Label: "Businesses"},
		{Key: taxonomy.MenuMetrics, Label: "Metrics", Children: []Item{
			{Key: taxonomy.MenuMetricsCoupons, Label: "Coupons"},
			{Key: taxonomy.MenuMetricsMeta, Label: "Meta Ads"},
			{Key: taxonomy.MenuMetricsGoogle, Label: "Google Ads"},
			{Key: taxonomy.MenuMetricsKeywords, Label: "Keywords"},
			{Key: taxonomy.MenuMetricsLink, Label: "Link Tracker"},
			{Key: taxonomy.MenuMetricsClub, Label: "Club Members"},
			{Key: taxonomy.MenuMetricsReviews, Label: "Online Reviews"},
		}},
		{Key: taxonomy.MenuSMS, Label: "SMS", Children: []Item{
			{Key: taxonomy.MenuSMSMarketing, Label: "Marketing"},
			{Key: taxonomy.MenuSMSRetention, Label: "Retention"},
			{Key: taxonomy.MenuSMSChurn, Label: "Churn"},
			{Key: taxonomy.MenuSMSContact, Label: "Contact Opt Out"},
		}},
		{Key: taxonomy.MenuInbox, Label: "Message Inbox"},
		{Key: taxonomy.MenuReviews, Label: "Reviews"},
		{Key: taxonomy.MenuCoupons, Label: "Coupons", Children: []Item{
			{Key: taxonomy.MenuCouponsAll, Label: "All Coupons"},
		}},
		{Key: taxonomy.MenuCampaigns, Label: "Campaigns"},
		{Key: taxonomy.MenuResources, Label: "Resources", Children: []Item{
			{Key: taxonomy.MenuResourcesForms, Label: "Forms"},
			{Key: taxonomy.MenuResourcesMAC, Label: "Member Acquisition Cost Calculator"},
			{Key: taxonomy.MenuResourcesPodcast, Label: "Cheers to Freedom Podcast"},
			{Key: taxonomy.MenuResourcesFeature, Label: "Feature Request"},
		}},
		{Key: taxonomy.MenuMobile, Label: "Mobile", Children: []Item{
			{Key: taxonomy.MenuMobileKiosk, Label: "Kiosk"},
			{Key: taxonomy.MenuMobileOcard, Label: "oCard"},
		}},
	}
}

// Filter returns the items of tree that role may see, in their original order.
//
// An item whose key is not in the role's menu permission list is dropped together with its
// subtree. Children of a kept item are filtered the same way; a kept parent stays visible even
// when none of its children survive. tree is not modified.
func Filter(tree []Item, role domain.OrgRole) []Item {
	out := make([]Item, 0, len(tree))
	for _, item := range tree {
		if !taxonomy.AllowsMenu(role, item.Key) {
			continue
		}
		kept := Item{Key: item.Key, Label: item.Label}
		if item.Children != nil {
			kept.Children = Filter(item.Children, role)
		}
		out = append(out, kept)
	}
	return out
}

// Keys flattens tree into its keys, depth first, parents before children.
func Keys(tree []Item) []string {
	var out []string
	for _, item := range tree {
		out = append(out, item.Key)
		out = append(out, Keys(item.Children)...)
	}
	return out
}

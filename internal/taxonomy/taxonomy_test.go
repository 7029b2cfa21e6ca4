package taxonomy

import (
	"reflect"
	"testing"

	"zeno-access/internal/role/domain"
)

var unknownRoles = []domain.OrgRole{"", "admin", "Owner", "superuser", "member"}

func TestMenuKeys_UnknownRoleMatchesStaff(t *testing.T) {
	staff := MenuKeys(domain.OrgRoleStaff)
	for _, r := range unknownRoles {
		if got := MenuKeys(r); !reflect.DeepEqual(got, staff) {
			t.Errorf("MenuKeys(%q) = %v, want staff keys %v", r, got, staff)
		}
		for _, k := range MenuKeys(domain.OrgRoleOwner) {
			if AllowsMenu(r, k) != AllowsMenu(domain.OrgRoleStaff, k) {
				t.Errorf("AllowsMenu(%q, %q) differs from staff", r, k)
			}
		}
	}
}

func TestMenuKeys_Staff(t *testing.T) {
	want := []string{MenuWelcome, MenuBusinesses, MenuReviews}
	if got := MenuKeys(domain.OrgRoleStaff); !reflect.DeepEqual(got, want) {
		t.Errorf("MenuKeys(staff) = %v, want %v", got, want)
	}
}

func TestMenuKeys_Manager(t *testing.T) {
	allowed := []string{
		MenuWelcome, MenuBusinesses, MenuMetrics, MenuMetricsClub, MenuSMS, MenuSMSChurn,
		MenuReviews, MenuCoupons, MenuCouponsAll, MenuCampaigns,
	}
	for _, k := range allowed {
		if !AllowsMenu(domain.OrgRoleManager, k) {
			t.Errorf("manager should see %q", k)
		}
	}
	denied := []string{MenuUsers, MenuInbox, MenuResources, MenuResourcesForms, MenuMobile, MenuMobileKiosk}
	for _, k := range denied {
		if AllowsMenu(domain.OrgRoleManager, k) {
			t.Errorf("manager should not see %q", k)
		}
	}
}

func TestMenuKeys_OwnerSeesEverything(t *testing.T) {
	for _, role := range []domain.OrgRole{domain.OrgRoleManager, domain.OrgRoleStaff} {
		for _, k := range MenuKeys(role) {
			if !AllowsMenu(domain.OrgRoleOwner, k) {
				t.Errorf("owner missing %q granted to %q", k, role)
			}
		}
	}
	if got := len(MenuKeys(domain.OrgRoleOwner)); got != 29 {
		t.Errorf("owner menu keys = %d, want 29", got)
	}
}

func TestMenuKeys_ReturnsCopy(t *testing.T) {
	keys := MenuKeys(domain.OrgRoleStaff)
	keys[0] = "mutated"
	if MenuKeys(domain.OrgRoleStaff)[0] != MenuWelcome {
		t.Fatal("MenuKeys exposed the shared table")
	}
}

func TestHasFeature_UnknownRoleAlwaysFalse(t *testing.T) {
	for _, r := range unknownRoles {
		for _, f := range Features {
			if HasFeature(r, f) {
				t.Errorf("HasFeature(%q, %q) = true, want false", r, f)
			}
		}
	}
}

func TestHasFeature_UnknownKey(t *testing.T) {
	for _, r := range domain.OrgRoles {
		if HasFeature(r, Feature("canLaunchRockets")) {
			t.Errorf("HasFeature(%q, unknown) = true", r)
		}
	}
}

func TestHasFeature_Table(t *testing.T) {
	testCases := []struct {
		role    domain.OrgRole
		feature Feature
		want    bool
	}{
		{domain.OrgRoleOwner, FeatureSwitchBranches, true},
		{domain.OrgRoleOwner, FeatureAccessMobile, true},
		{domain.OrgRoleManager, FeatureViewMetrics, true},
		{domain.OrgRoleManager, FeatureSendSMS, true},
		{domain.OrgRoleManager, FeatureManageUsers, false},
		{domain.OrgRoleManager, FeatureManageCampaigns, false},
		{domain.OrgRoleStaff, FeatureViewReviews, true},
		{domain.OrgRoleStaff, FeatureViewMetrics, false},
		{domain.OrgRoleStaff, FeatureExport, false},
	}
	for _, tc := range testCases {
		if got := HasFeature(tc.role, tc.feature); got != tc.want {
			t.Errorf("HasFeature(%q, %q) = %v, want %v", tc.role, tc.feature, got, tc.want)
		}
	}
}

func TestFeaturePermissions_FallbackAndCopy(t *testing.T) {
	got := FeaturePermissions("intruder")
	if !reflect.DeepEqual(got, FeaturePermissions(domain.OrgRoleStaff)) {
		t.Errorf("FeaturePermissions(unknown) = %v, want staff map", got)
	}
	if len(got) != len(Features) {
		t.Errorf("len = %d, want %d", len(got), len(Features))
	}
	got[FeatureExport] = true
	if HasFeature(domain.OrgRoleStaff, FeatureExport) {
		t.Fatal("FeaturePermissions exposed the shared table")
	}
}

func TestVisibility(t *testing.T) {
	if !CanView(domain.OrgRoleOwner, ViewFinancials) {
		t.Error("owner should view financials")
	}
	if !CanView(domain.OrgRoleManager, ViewAnalytics) {
		t.Error("manager should view analytics")
	}
	if CanView(domain.OrgRoleManager, ViewRevenue) {
		t.Error("manager should not view revenue")
	}
	if CanView("ghost", ViewAnalytics) {
		t.Error("unknown role should not view anything")
	}
	if !reflect.DeepEqual(Visibility("ghost"), Visibility(domain.OrgRoleStaff)) {
		t.Error("Visibility(unknown) should match staff")
	}
}

func TestBranchAccess(t *testing.T) {
	if got := BranchAccess(domain.OrgRoleOwner); got != BranchAccessAll {
		t.Errorf("owner = %q, want all", got)
	}
	for _, r := range []domain.OrgRole{domain.OrgRoleManager, domain.OrgRoleStaff, "ghost"} {
		if got := BranchAccess(r); got != BranchAccessAssigned {
			t.Errorf("%q = %q, want assigned", r, got)
		}
	}
}

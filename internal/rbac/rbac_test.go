package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role     string
		perm     string
		expected bool
	}{
		{RoleAdmin, PermManageAlerts, true},
		{RoleAdmin, PermGenerateReport, true},
		{RoleAuditor, PermManageAlerts, true},
		{RoleAuditor, PermGenerateReport, true},
		{RoleViewer, PermReadEvents, true},
		{RoleViewer, PermReadReports, true},
		{RoleViewer, PermManageAlerts, false},
		{RoleViewer, PermGenerateReport, false},
		{"nonexistent", PermReadEvents, false},
		{RoleAdmin, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.perm, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.perm); got != tt.expected {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", RoleAdmin},
		{"   ", RoleAdmin},
		{"auditor", RoleAuditor},
		{" Viewer ", RoleViewer},
		{"root", "ROOT"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeRole(tt.input); got != tt.expected {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAllRolesValid(t *testing.T) {
	for _, role := range AllRoles {
		if !IsValidRole(role) {
			t.Errorf("role %q should be valid", role)
		}
	}
	if IsValidRole("ROOT") {
		t.Error("ROOT should not be a valid role")
	}
}

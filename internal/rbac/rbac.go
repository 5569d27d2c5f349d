package rbac

import "strings"

// Role constants
const (
	RoleAdmin   = "ADMIN"
	RoleAuditor = "AUDITOR"
	RoleViewer  = "VIEWER"
)

// Permission constants
const (
	PermReadEvents     = "read_events"
	PermReadAlerts     = "read_alerts"
	PermManageAlerts   = "manage_alerts"
	PermReadReports    = "read_reports"
	PermGenerateReport = "generate_report"
)

// AllRoles lists roles from most to least privileged.
var AllRoles = []string{RoleAdmin, RoleAuditor, RoleViewer}

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermReadEvents, PermReadAlerts, PermManageAlerts, PermReadReports, PermGenerateReport,
	},
	RoleAuditor: {
		PermReadEvents, PermReadAlerts, PermManageAlerts, PermReadReports, PermGenerateReport,
	},
	RoleViewer: {
		PermReadEvents, PermReadAlerts, PermReadReports,
		// Viewer CANNOT: PermManageAlerts, PermGenerateReport
	},
}

// NormalizeRole uppercases role; blank becomes ADMIN, matching first-user bootstrap.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return RoleAdmin
	}
	return role
}

func IsValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

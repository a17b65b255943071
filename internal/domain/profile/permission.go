package profile

type Permission string

const (
	// Farm records
	PermissionFarmView Permission = "farm.view"
	PermissionFarmEdit Permission = "farm.edit"

	// Finances
	PermissionFinanceView Permission = "finance.view"
	PermissionFinanceEdit Permission = "finance.edit"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// User management
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their default permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionFarmView,
		PermissionFarmEdit,
		PermissionFinanceView,
		PermissionFinanceEdit,
		PermissionReportsView,
		PermissionUserManage,
	},
	RoleEmployee: {
		PermissionFarmView,
		PermissionFarmEdit,
		PermissionFinanceView,
		PermissionFinanceEdit,
		PermissionReportsView,
	},
	RoleViewer: {
		PermissionFarmView,
		PermissionFinanceView,
		PermissionReportsView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

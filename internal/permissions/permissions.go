// Package permissions is the static role x permission table. Every granted pair is
// listed explicitly; nothing is inferred from role rank.
package permissions

import "github.com/dealeros/dealeros-backend/pkg/enums"

// Permission names a gated capability.
type Permission string

const (
	ManageTeam         Permission = "manage-team"
	ManageBilling      Permission = "manage-billing"
	DeleteTenant       Permission = "delete-tenant"
	ManageSettings     Permission = "manage-settings"
	ManageIntegrations Permission = "manage-integrations"
	ViewAnalytics      Permission = "view-analytics"
	ManageVehicles     Permission = "manage-vehicles"
	ManageLeads        Permission = "manage-leads"
	ManageCustomers    Permission = "manage-customers"
	ManageQuotes       Permission = "manage-quotes"
	ManageInvoices     Permission = "manage-invoices"
)

// All lists every known permission in display order.
var All = []Permission{
	ManageTeam,
	ManageBilling,
	DeleteTenant,
	ManageSettings,
	ManageIntegrations,
	ViewAnalytics,
	ManageVehicles,
	ManageLeads,
	ManageCustomers,
	ManageQuotes,
	ManageInvoices,
}

var matrix = map[enums.MemberRole]map[Permission]bool{
	enums.MemberRoleOwner: {
		ManageTeam:         true,
		ManageBilling:      true,
		DeleteTenant:       true,
		ManageSettings:     true,
		ManageIntegrations: true,
		ViewAnalytics:      true,
		ManageVehicles:     true,
		ManageLeads:        true,
		ManageCustomers:    true,
		ManageQuotes:       true,
		ManageInvoices:     true,
	},
	enums.MemberRoleAdmin: {
		ManageTeam:         true,
		ManageBilling:      false,
		DeleteTenant:       false,
		ManageSettings:     true,
		ManageIntegrations: true,
		ViewAnalytics:      true,
		ManageVehicles:     true,
		ManageLeads:        true,
		ManageCustomers:    true,
		ManageQuotes:       true,
		ManageInvoices:     true,
	},
	enums.MemberRoleMember: {
		ManageTeam:         false,
		ManageBilling:      false,
		DeleteTenant:       false,
		ManageSettings:     false,
		ManageIntegrations: false,
		ViewAnalytics:      true,
		ManageVehicles:     true,
		ManageLeads:        true,
		ManageCustomers:    true,
		ManageQuotes:       true,
		ManageInvoices:     true,
	},
	enums.MemberRoleViewer: {
		ManageTeam:         false,
		ManageBilling:      false,
		DeleteTenant:       false,
		ManageSettings:     false,
		ManageIntegrations: false,
		ViewAnalytics:      true,
		ManageVehicles:     false,
		ManageLeads:        false,
		ManageCustomers:    false,
		ManageQuotes:       false,
		ManageInvoices:     false,
	},
}

// Has reports whether role is granted p. Unknown roles and permissions are denied.
func Has(role enums.MemberRole, p Permission) bool {
	return matrix[role][p]
}

// Permissions returns the granted permissions for role in display order.
func Permissions(role enums.MemberRole) []Permission {
	out := make([]Permission, 0, len(All))
	for _, p := range All {
		if Has(role, p) {
			out = append(out, p)
		}
	}
	return out
}

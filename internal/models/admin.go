package models

// Role is an administrator's permission level.
type Role string

const (
	RoleSuperAdmin     Role = "Super Admin"
	RoleProgramManager Role = "Program Manager"
	RoleViewer         Role = "Viewer"
)

// View identifies a top-level screen of the dashboard.
type View string

const (
	ViewDashboard    View = "dashboard"
	ViewParticipants View = "participants"
	ViewProgress     View = "progress"
	ViewReminders    View = "reminders"
	ViewResources    View = "resources"
	ViewCertificates View = "certificates"
	ViewAnalytics    View = "analytics"
	ViewSettings     View = "settings"
)

// Views lists every view in menu order.
var Views = []View{
	ViewDashboard,
	ViewParticipants,
	ViewProgress,
	ViewReminders,
	ViewResources,
	ViewCertificates,
	ViewAnalytics,
	ViewSettings,
}

// Title returns the menu label for the view.
func (v View) Title() string {
	switch v {
	case ViewDashboard:
		return "Overview"
	case ViewParticipants:
		return "Participants"
	case ViewProgress:
		return "Progress"
	case ViewReminders:
		return "Reminders"
	case ViewResources:
		return "Resources"
	case ViewCertificates:
		return "Certificates"
	case ViewAnalytics:
		return "Analytics"
	case ViewSettings:
		return "Settings"
	default:
		return string(v)
	}
}

var viewRoles = map[View][]Role{
	ViewDashboard:    {RoleSuperAdmin, RoleProgramManager, RoleViewer},
	ViewParticipants: {RoleSuperAdmin, RoleProgramManager},
	ViewProgress:     {RoleSuperAdmin, RoleProgramManager, RoleViewer},
	ViewReminders:    {RoleSuperAdmin, RoleProgramManager},
	ViewResources:    {RoleSuperAdmin, RoleProgramManager},
	ViewCertificates: {RoleSuperAdmin},
	ViewAnalytics:    {RoleSuperAdmin, RoleProgramManager, RoleViewer},
	ViewSettings:     {RoleSuperAdmin},
}

// CanAccess reports whether role may open view.
func CanAccess(role Role, view View) bool {
	for _, r := range viewRoles[view] {
		if r == role {
			return true
		}
	}
	return false
}

// MenuFor returns the views role may open, in menu order.
func MenuFor(role Role) []View {
	var menu []View
	for _, v := range Views {
		if CanAccess(role, v) {
			menu = append(menu, v)
		}
	}
	return menu
}

// CanMessage reports whether role may contact participants or change program data.
func CanMessage(role Role) bool {
	return role == RoleSuperAdmin || role == RoleProgramManager
}

// Admin is a staff member operating the dashboard.
type Admin struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// DefaultAdmins returns the built-in staff accounts.
func DefaultAdmins() []Admin {
	return []Admin{
		{ID: "u-1", Name: "Sarah Connor", Email: "sarah@leap.com", Role: RoleSuperAdmin},
		{ID: "u-2", Name: "John Reese", Email: "john@leap.com", Role: RoleProgramManager},
		{ID: "u-3", Name: "Harold Finch", Email: "harold@leap.com", Role: RoleViewer},
	}
}

// FindAdmin returns the admin with id from admins.
func FindAdmin(admins []Admin, id string) (Admin, bool) {
	for _, a := range admins {
		if a.ID == id {
			return a, true
		}
	}
	return Admin{}, false
}

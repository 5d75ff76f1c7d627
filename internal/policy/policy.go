// Package policy holds the declarative access table: one place mapping
// (resource, action) to the role set allowed to perform it. Handlers never
// branch on roles themselves; the single Evaluate call decides.
package policy

import (
	"github.com/clinicore/records-api/internal/model"
)

// Action names the operations the table covers.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionList    Action = "list"
	ActionUpdate  Action = "update"
	ActionArchive Action = "archive"
	ActionSearch  Action = "search"
	ActionStats   Action = "stats"
	ActionExport  Action = "export"
	ActionCleanup Action = "cleanup"
)

// Resource names match the route groups they guard.
const (
	ResourcePatients      Resource = "patients"
	ResourceSurgeries     Resource = "surgeries"
	ResourceDoctorNotes   Resource = "doctor-notes"
	ResourceSurgicalNotes Resource = "surgical-notes"
	ResourceAuditLogs     Resource = "audit-logs"
	ResourceReminders     Resource = "reminders"
	ResourceDocuments     Resource = "documents"
	ResourceMedia         Resource = "media"
	ResourceNotifications Resource = "notifications"
)

type Resource string

type key struct {
	resource Resource
	action   Action
}

var clinicians = []model.Role{model.RoleDoctor, model.RoleSurgeon, model.RoleModerator, model.RoleAdmin}

var table = map[key][]model.Role{
	{ResourcePatients, ActionCreate}:  {model.RoleDoctor, model.RoleModerator, model.RoleAdmin},
	{ResourcePatients, ActionRead}:    clinicians,
	{ResourcePatients, ActionList}:    clinicians,
	{ResourcePatients, ActionSearch}:  clinicians,
	{ResourcePatients, ActionUpdate}:  {model.RoleDoctor, model.RoleModerator, model.RoleAdmin},
	{ResourcePatients, ActionArchive}: {model.RoleDoctor, model.RoleAdmin},

	{ResourceSurgeries, ActionCreate}:  {model.RoleSurgeon, model.RoleAdmin},
	{ResourceSurgeries, ActionRead}:    clinicians,
	{ResourceSurgeries, ActionList}:    clinicians,
	{ResourceSurgeries, ActionUpdate}:  {model.RoleSurgeon, model.RoleAdmin},
	{ResourceSurgeries, ActionArchive}: {model.RoleSurgeon, model.RoleAdmin},

	{ResourceDoctorNotes, ActionCreate}:  {model.RoleDoctor},
	{ResourceDoctorNotes, ActionRead}:    {model.RoleDoctor},
	{ResourceDoctorNotes, ActionList}:    {model.RoleDoctor},
	{ResourceDoctorNotes, ActionSearch}:  {model.RoleDoctor},
	{ResourceDoctorNotes, ActionUpdate}:  {model.RoleDoctor},
	{ResourceDoctorNotes, ActionArchive}: {model.RoleDoctor},

	{ResourceSurgicalNotes, ActionCreate}:  {model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},
	{ResourceSurgicalNotes, ActionRead}:    {model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},
	{ResourceSurgicalNotes, ActionList}:    {model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},
	{ResourceSurgicalNotes, ActionSearch}:  {model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},
	{ResourceSurgicalNotes, ActionUpdate}:  {model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},
	{ResourceSurgicalNotes, ActionArchive}: {model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},

	{ResourceAuditLogs, ActionList}:    {model.RoleModerator, model.RoleAdmin},
	{ResourceAuditLogs, ActionStats}:   {model.RoleModerator, model.RoleAdmin},
	{ResourceAuditLogs, ActionExport}:  {model.RoleAdmin},
	{ResourceAuditLogs, ActionCleanup}: {model.RoleAdmin},

	{ResourceReminders, ActionCreate}: {model.RoleDoctor, model.RoleSurgeon, model.RoleModerator, model.RoleAdmin},
	{ResourceReminders, ActionRead}:   clinicians,
	{ResourceReminders, ActionList}:   clinicians,

	{ResourceDocuments, ActionCreate}: {model.RoleDoctor, model.RoleModerator, model.RoleAdmin},
	{ResourceDocuments, ActionList}:   clinicians,

	{ResourceMedia, ActionCreate}:  clinicians,
	{ResourceMedia, ActionRead}:    clinicians,
	{ResourceMedia, ActionList}:    clinicians,
	{ResourceMedia, ActionArchive}: {model.RoleAdmin},

	{ResourceNotifications, ActionRead}: clinicians,
}

// Allowed reports whether role may perform action on resource. Unknown
// (resource, action) pairs are denied.
func Allowed(resource Resource, action Action, role model.Role) bool {
	roles, ok := table[key{resource, action}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

package rbac

// Default policy. Students drive their own campaigns; teachers get
// read-only visibility into results; admin can do everything.
var RolePermissions = map[string][]string{
	"student": {
		"exam:create",
		"exam:view-own",
		"exam:manage-own", // pause/resume/delete
		"day:start",
		"day:complete",
		"answer:record",
		"report:view-own",
		"user:change_password",
	},
	"teacher": {
		"exam:view",
		"report:view",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*",
	},
}

package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"user": {
		"catalog:view",
		"test:solve",
		"result:view-own",
	},
	"admin": {
		"catalog:view",
		"catalog:manage",
		"test:solve",
		"test:manage",
		"result:view-own",
		"result:view-all",
		"users:list",
		"users:manage",
	},
	"super_admin": {
		"*", // everything
	},
}

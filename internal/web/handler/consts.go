package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// IDPath is the member route of a resource.
	IDPath = "/:id"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// Menu names gating the admin resources.
	MenuUsers = "users"
	MenuRoles = "roles"
	MenuMenus = "menus"
)

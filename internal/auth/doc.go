// Package auth provides authentication and authorization for the task board.
//
// # Credentials
//
// Store registers users and verifies logins. Passwords are hashed with
// argon2id; bcrypt hashes from older data sets are still accepted and are
// replaced by an argon2id hash on the next successful login. A registration
// that asks for an unknown role gets the default role "Employee".
//
// # Tokens
//
// TokenService issues stateless HS512 tokens (JWT) carrying the user id as
// subject plus the username and role name. Nothing is stored server side, so
// logout only drops the token on the client and a token stays valid until it
// expires.
//
// # Authorization
//
// Users have exactly one role, roles are granted menus. Resolver computes the
// menu set of a user, which clients use to decide what to show. RequireMenu
// gates routes on the same grants:
//
//	tokens, err := auth.NewTokenService(cfg.Token)
//	resolver := auth.NewResolver(db)
//
//	app.Get("/users",
//	    auth.RequireToken(tokens),
//	    auth.RequireMenu(resolver, "users"),
//	    handler,
//	)
package auth

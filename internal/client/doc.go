// Package client is a Go session client for the task board API.
//
// A Session caches the bearer token, the user summary and the visible menus,
// persists token and user into a fiber.Storage under the keys "token" and
// "user", and rehydrates them when created. Its state machine runs
// Unauthenticated → Authenticating → Authenticated. Logout always returns to
// Unauthenticated.
//
// TaskBoard keeps a local copy of the tasks and applies status moves
// optimistically, rolling back when the server refuses them.
package client

// Package common contains shared constants and sentinel errors used across
// the client packages.
package common

// HTTP header names and values shared by the API client and its tests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-Id"
	BearerPrefix            = "Bearer "
)

// Key/value namespaces owned by the session stores. Each store clears only
// its own namespace.
const (
	NamespaceAuthToken = "auth_token"
	NamespaceUserCache = "user_cache"
	NamespaceTeam      = "team_prefs"
	NamespaceKeystore  = "_keystore"
)

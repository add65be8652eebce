// Package common contains shared constants and helpers used across
// catalogctl components.
package common

// Header names and schemes used on outbound HTTP requests.
const (
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
	APIKeyHeaderName        = "apikey"
	RequestIDHeaderName     = "X-Request-ID"
)

// AllCategories is the category sentinel that disables category filtering.
const AllCategories = "Todas"

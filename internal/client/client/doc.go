// Package client contains the transport side of catalogctl.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, a REST client for the product API: list (sorted), create,
//     update, delete and multipart bulk import. Write calls carry the
//     session's bearer credential; every call carries an X-Request-ID.
//  2. AuthClient, a client for the GoTrue-compatible auth provider:
//     password sign-in, sign-out, recovery e-mail, password update, token
//     refresh and sessions established from e-mailed links. State changes are
//     published as models.AuthEvent values through a Broadcaster.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx API responses surface as *APIError (status + raw body) and
// provider failures as *AuthError. Both match the sentinels ErrUnauthorized
// (401/403) and ErrRateLimited (429) with errors.Is. Failures to get any
// response, and unreadable success bodies, wrap ErrUnavailable.
//
// Concurrency & Contexts
//
// HTTPClient and AuthClient are safe for concurrent use. All operations
// accept context.Context and honor cancellation/timeouts.
package client

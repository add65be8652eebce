// Package cli provides the interactive catalog console.
//
// It wires configuration, local session storage, the product API client,
// the auth provider client and the application services, then runs a
// read–eval–print loop that only renders state owned by those services.
//
// The console routes between three views, mirroring the session state:
//   - login: sign in or request a password recovery e-mail
//   - set password: finish an invite or recovery flow
//   - dashboard: browse, filter and sort products, edit, delete, import
//
// The REPL is started via App.Run(ctx, link), which blocks until the user
// exits. See App and runREPL for details.
package cli

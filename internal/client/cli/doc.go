// Package cli provides the interactive clansession command-line client.
//
// It wires configuration, the session store, the API client and the
// services, then runs a REPL over them. A stored session is restored on
// start: the team context is initialized, an expired token pair is
// refreshed and the team list is reloaded.
//
// Key features:
//   - Register / Login (with an optional captcha step) / Logout
//   - whoami and status views over the token store and the user cache
//   - Team listing, switching, default selection and view mode
//   - Cross-team task listing in global mode
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli

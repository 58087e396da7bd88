// Package api is the HTTP client for the team-collaboration backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): teams,
//     auth, user profile and captcha endpoints.
//  2. A concrete implementation over net/http (see HTTPClient) that decodes
//     the uniform {success, message, data, code, timestamp} envelope.
//  3. AuthTransport, an http.RoundTripper that attaches the bearer token to
//     every request except the public auth and captcha endpoints.
//
// # Error Handling
//
// Transport conditions are exposed as sentinel errors matched with
// errors.Is: ErrUnavailable, ErrUnauthorized. A response with success=false
// becomes *BackendError, matched with errors.As. Captcha endpoints use their
// own envelope and fail with *CaptchaError.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package api

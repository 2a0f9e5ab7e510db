// Package oauth implements the credential lifecycle for the Teamleader
// Focus API: the authorization-code exchange, refresh-token rotation,
// on-disk persistence, and the token manager that keeps a single access
// token valid for the lifetime of the process.
//
// Layering:
//
//   - Exchanger performs the two token-endpoint round-trips (code
//     exchange and refresh). It is stateless and applies no policy.
//   - CredentialStore persists exactly one credential record to a JSON
//     file. A missing or unreadable record is a valid cold start.
//   - TokenManager owns the in-memory credential and all policy:
//     proactive refresh with an expiry buffer, single-flight
//     coordination of concurrent refreshes, bounded retry of transient
//     failures, and write-through persistence.
//   - The interactive flow (RunAuthorizationFlow) drives a short-lived
//     localhost callback server through the browser-based
//     authorization-code grant.
//
// Teamleader rotates the refresh token on every refresh and invalidates
// the previous one, so the single-flight guarantee in TokenManager is a
// correctness requirement, not an optimization: two concurrent
// refreshes would invalidate each other.
package oauth

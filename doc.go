// Package auth provides the credential layer for a small sports network
// with four closed roles (user, player, coach, admin): bcrypt secret
// hashing, signed JWT issuance and validation, a role gate for fiber
// routes, and the register, login and change password flows on top of a
// pluggable IdentityStore.
//
// Tokens:
//   - Tokens are HMAC signed, carry {id, name, email, role} and expire after
//     Config.GetTokenExpiration hours (7 days by default). There is no
//     refresh or revocation, a changed password does not invalidate
//     outstanding tokens.
//
// Gate:
//   - RouteAuthenticator.RequireRole answers 401 "Unauthorized" when no
//     bearer token is present, 401 "Invalid Token" for any validation
//     failure and 403 "Forbidden" when the asserted role differs. Roles are
//     flat, admin is not a superuser.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     registration, login, password and account events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication. Metrics.ActivitySink counts them.
package auth

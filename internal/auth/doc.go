// Package auth implements registration, credential verification and the
// signed session token.
//
// Sessions are stateless: a signed, time-limited token carrying the user id
// and super-admin flag travels in the "token" cookie. The middleware resolves
// it on every request and never rejects — a missing, invalid or expired token
// yields an anonymous identity, and authorization is enforced per endpoint.
package auth

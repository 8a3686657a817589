// Package auth resolves caller identities and authorizes access to protected
// routes.
//
// Resolution and authorization are two separate stages. Resolve runs for every
// request before routing, and records either the resolved identity or the
// reason resolution failed, without rejecting anything. Gate runs only on
// protected routes, and fails the request with the recorded reason if the
// identity wasn't resolved.
package auth

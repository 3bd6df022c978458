// Package principal models the two identity kinds that can sign in to bizdesk and resolves them
// by email.
//
// An Owner (kind "user") owns the subscription and the businesses; an Employee (kind "employee")
// works for one business of one owner. Both live in separate stores and share one token format.
// Principal is the tagged variant over the two, exposing the common facts {id, email, role}.
//
// Resolve looks up an email in a fixed order, owners first and employees second. Token-driven
// lookups already know the kind from the token claims and use ResolveKind, optionally backed by a
// Cache. Authenticate checks a password against the stored bcrypt hash and reports every failure
// as ErrInvalidCredentials.
package principal

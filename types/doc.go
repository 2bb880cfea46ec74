// Package types contains the core types and interfaces of the gecco library.
//
// It exists as a separate package so that internal packages can share the
// data model without importing the root gecco package, which would create
// an import cycle. The root package re-exports the public subset via type
// aliases, so library users normally write gecco.Module, gecco.State, etc.
package types

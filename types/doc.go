// Package types contains the core types and interfaces shared across the
// abtest library.
//
// Internal packages depend on this package instead of the root abtest package,
// which avoids import cycles while the root package re-exports the public
// surface via type aliases.
package types

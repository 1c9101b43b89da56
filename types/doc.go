// Package types contains the shared value types and collaborator interfaces
// of the pairwise library.
//
// Internal packages depend on types without importing the root pairwise
// package, which re-exports the public subset via type aliases. This keeps
// the import graph acyclic while offering users a single convenient import.
package types

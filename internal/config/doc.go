// Package config loads, normalizes, and validates the snapsort configuration.
//
// Configuration lives in a TOML file (default ~/.config/snapsort/config.toml,
// with a project-local snapsort.toml fallback). Load applies repository
// defaults first, then the file contents, then normalization (path expansion,
// extension casing) and validation. Path fields in a loaded Config are always
// absolute.
package config

// Package config loads, normalizes, and validates dietstat configuration.
//
// Configuration lives in a TOML file (by default
// ~/.config/dietstat/config.toml, falling back to ./dietstat.toml) and is
// decoded on top of the repository defaults returned by Default. Load expands
// "~" in path fields, fills blank values with defaults, applies the few
// supported environment overrides, and validates the result so callers always
// receive a usable Config.
//
// Keep new settings grouped by the subsystem that consumes them and add the
// matching default, normalization, and validation step alongside the field.
package config

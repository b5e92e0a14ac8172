// Package config loads, normalizes, and validates homework configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the HOMEWORK_BASE_DIR environment
// fallback. The Config type centralizes every knob the batch generator, the
// selector, and the pitching drill need, replacing the hard-coded folder,
// target, and layout constants the scripts used to carry.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

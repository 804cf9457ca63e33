// Package config loads, normalizes, and validates mediasort configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEDIASORT_SOURCE and MEDIASORT_LABEL. The Config type is handed to the run
// controller at construction time; nothing downstream reads global state.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config

// Package config loads, normalizes, and validates sysctlr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SYSCTLR_PROC_ROOT. The Config type holds the target sysctl file, the
// parameter root, request defaults, the reload command and the manifest of
// desired entries consumed by "apply --all" and "watch".
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config

// Package config loads, normalizes, and validates wardrobe client
// configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as WARDROBE_API_URL. The
// Config type centralizes every knob the CLI needs so backend endpoints,
// camera settings, and local state paths are discovered in one pass.
package config

// Package services defines shared utilities consumed by the capture, upload
// and wardrobe packages.
//
// Key responsibilities:
//   - Context helpers that stamp upload session IDs, pipeline stage names, and
//     correlation identifiers for logging and request tracing.
//   - Structured error markers plus the Wrap helper that classify failures as
//     invalid media, unavailable devices, transport failures or remote
//     rejections so the CLI can render a consistent message.
//
// Use these helpers when wiring new client logic so error reporting and
// observability stay uniform across the module.
package services

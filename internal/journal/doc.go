// Package journal keeps a local SQLite history of upload sessions.
package journal

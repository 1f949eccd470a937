// Package deps reports whether the external programs used for camera capture
// are installed.
package deps

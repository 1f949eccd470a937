// Package preflight provides readiness checks for the backend, the camera and
// the local state directories the client writes to.
//
// "wardrobe doctor" runs RunAll and prints one status line per result. Checks
// never fail hard; each Result carries a human readable detail.
package preflight

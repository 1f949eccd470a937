// Package backend is the HTTP client for the wardrobe REST service: upload,
// wardrobe listing and mutation, recommendations and city search.
package backend

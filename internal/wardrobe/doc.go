// Package wardrobe models the user's clothing collection as the backend
// reports it: three disjoint category lists that are always replaced
// wholesale after a create, edit or delete instead of being patched locally.
package wardrobe

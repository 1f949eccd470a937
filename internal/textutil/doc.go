// Package textutil provides text processing helpers shared by the filter,
// edit-form and upload code.
//
// The primary use cases are:
//   - Splitting and joining comma separated tag lists, accepting both ASCII
//     and full-width commas
//   - Unicode case folding for case-insensitive substring search
//   - Sanitizing filenames before they are sent as multipart parts
package textutil

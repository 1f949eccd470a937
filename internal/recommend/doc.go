// Package recommend holds the weather recommendation view: selected city, the
// last fetched suggestion and its typewriter presentation.
package recommend

// Package main hosts the wardrobe CLI entrypoint and command graph.
//
// Commands translate terminal invocations into calls against the wardrobe
// backend: uploading photos from disk or the camera, browsing and editing the
// wardrobe, composing outfits, and streaming weather based recommendations.
// Configuration resolution, logger construction and client wiring live in
// commandContext so subcommands only describe their flags and output.
package main

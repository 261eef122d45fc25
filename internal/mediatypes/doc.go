// Package mediatypes provides shared type definitions and utilities for media
// kinds across the media catalog.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure utility functions.
//
// # Kinds
//
// Every catalog record carries a Kind discriminator:
//
//	mediatypes.KindImage // jpg, jpeg, png, gif, webp, svg, bmp
//	mediatypes.KindVideo // mp4, avi, mov, mkv, webm
//	mediatypes.KindAudio // mp3, wav, flac, aac, ogg
//
// # Extension Detection
//
// KindForPath classifies a vault path against the fixed tables and falls back
// to KindImage for anything it does not recognize. That fallback is what the
// legacy schema migration relies on.
//
//	kind := mediatypes.KindForPath("attachments/clip.MOV") // KindVideo
//
// ExtensionSet is the user-configurable variant used by the scanner; it
// decides which files are picked up at all:
//
//	set := mediatypes.DefaultExtensionSet()
//	if set.Supports("png") {
//	    // File is a supported image
//	}
//
// # Paths
//
// Vault paths are always slash separated. Use ToSlash on anything coming from
// the host before comparing prefixes.
package mediatypes

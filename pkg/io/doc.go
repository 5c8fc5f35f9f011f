// Package io reads and writes boards in their native JSON format.
//
// # Overview
//
// The native format stores a [board.State] as is: every item with its
// payload and every connection with its styling and waypoints. It is the
// format the CLI edits, stores and renders. For exchange with other archival
// tools use package iiif, which converts a board into an annotated canvas.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "items": [
//	    {"id": "7c1e...", "kind": "note", "resourceId": "urn:pinboard:note:...",
//	     "x": 0, "y": 0, "w": 160, "h": 96, "annotation": "letter, 1843"},
//	    {"id": "a93f...", "kind": "resource", "resourceId": "https://example.org/iiif/1/manifest",
//	     "resourceType": "Manifest", "x": 240, "y": 0, "w": 160, "h": 120,
//	     "label": "Ship log", "blobUrl": "https://example.org/thumb.jpg"}
//	  ],
//	  "connections": [
//	    {"id": "e2d0...", "fromId": "7c1e...", "toId": "a93f...",
//	     "fromAnchor": "right", "toAnchor": "left", "style": "elbow", "direction": "auto"}
//	  ]
//	}
//
// Item order is z-order. Items carry a "kind" of note, resource or
// composite; composite items keep their "layers" untouched.
//
// # Import
//
// [ReadJSON] and [ImportJSON] repair what they can instead of failing:
// missing or duplicate item ids are replaced, non-positive sizes are
// clamped, and connections that are self loops, dangling or duplicates are
// dropped (see [board.State.Sanitize]). Only malformed JSON and unknown
// format versions are errors.
//
// # Export
//
// [WriteJSON] and [ExportJSON] write indented JSON. [ExportJSON] writes
// through a temporary file in the target directory and renames it, so an
// interrupted save leaves the previous file intact.
package io

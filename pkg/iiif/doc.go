// Package iiif converts boards to and from a canvas fragment of a IIIF
// Presentation 3 document.
//
// # Export
//
// [Export] lays the board out on a single Canvas sized to the bounding box
// of all items plus a margin. Positions are normalized so the box starts at
// the margin. Every item becomes a "painting" annotation whose target is a
// media fragment (#xywh=x,y,w,h). Items with a preview get an Image body,
// all others a TextualBody carrying the note text or the label. Every
// drawable connection becomes a "linking" annotation targeting the source
// anchor point, with a JSON body describing both endpoints and the styling.
// Non-finite coordinates cannot be written as JSON and fail the export.
//
// Board-specific fields that have no IIIF equivalent (item id, opacity,
// lock state, composite layers) travel in a "board" extension object on the
// annotation. Other IIIF consumers ignore it.
//
// # Import
//
// [Import] is lenient. Entries it cannot understand are recorded in the
// returned [Report] and skipped; a fragment never fails to import as a whole.
// This starts at decoding: [ReadJSON] decodes each page and annotation on
// its own and sets aside the ones with an unexpected shape for Import to
// report. Connections are matched by item id first, then by the position of
// their target point relative to the anchors of the imported items, placed
// at the same anchor offset the fragment was exported with.
//
// Export followed by Import reproduces the board up to a translation of the
// origin.
package iiif

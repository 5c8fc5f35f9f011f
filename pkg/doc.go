// Package pkg holds the libraries behind pinboard, a spatial research board
// on which notes and IIIF resources are placed, connected and exchanged as
// IIIF canvas fragments.
//
// # Overview
//
// The packages fall into four groups:
//
//  1. Model: [geom] for points and rectangles, [board] for items,
//     connections, templates and every state transition, [history] for
//     undo, redo and gestures.
//  2. Interaction: [viewport] for pan and zoom, [route] for anchors and
//     connection paths, [interact] for the pointer and keyboard state
//     machine.
//  3. Exchange: [iiif] for canvas fragments, [io] for the native board
//     format, [resolve] for turning resource ids into descriptors, [render]
//     for SVG, PNG and Graphviz output, [store] for shared boards.
//  4. Infrastructure: [cache], [config], [errors], [httputil],
//     [observability] and [buildinfo].
//
// # Data Flow
//
//	pointer/keyboard events          resource ids
//	         ↓                            ↓
//	    [interact] ──────────────→  [resolve] (+ [cache])
//	         ↓
//	    [history] (undo/redo, gestures)
//	         ↓
//	    [board] state ──→ [route] paths ──→ [render] SVG/PNG/DOT
//	         ↓
//	    [iiif] canvas fragment ──→ [store] (files or redis)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/pinboard/pkg/board"
//	    "github.com/matzehuels/pinboard/pkg/geom"
//	    "github.com/matzehuels/pinboard/pkg/history"
//	    "github.com/matzehuels/pinboard/pkg/iiif"
//	)
//
//	st := history.NewStore(board.State{}, history.DefaultLimit)
//	note := board.NewNote("letter, 1843", geom.R(0, 0, 160, 96))
//	st.Apply("add note", func(s board.State) board.State { return s.AddItem(note) })
//
//	canvas, err := iiif.Export(st.State(), iiif.Options{Label: "Letters"})
//	if err != nil {
//	    return err
//	}
//	_ = iiif.ExportFile(canvas, "letters.json")
//
// The command-line front end lives in cmd/pinboard; the HTTP and MCP
// servers in internal/api and internal/mcpserver share the operations of
// internal/service.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/geom
// [board]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/board
// [history]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/history
// [viewport]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/viewport
// [route]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/route
// [interact]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/interact
// [iiif]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/iiif
// [io]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/io
// [resolve]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/resolve
// [render]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/render
// [store]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pinboard/pkg/buildinfo
package pkg

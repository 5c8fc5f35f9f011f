// Package render draws boards as images.
//
// # Overview
//
// Three outputs are supported:
//
//   - [RenderSVG] draws items, routed connections and labels as SVG using
//     github.com/ajstarks/svgo. Connection paths are the exact paths of
//     package route, so the SVG matches what the editor shows.
//   - [RenderPNG] rasterizes the same scene with github.com/fogleman/gg.
//   - [ToDOT] and [RenderDOTSVG] export the board as a Graphviz node-link
//     graph, either pinned to the board positions or laid out by Graphviz.
//
// The drawn area is the bounding box of all items padded by a margin, the
// same box package iiif exports, so an SVG rendering can be laid over an
// exported canvas.
//
// # Options
//
// SVG and PNG rendering take functional options:
//
//	svg := render.RenderSVG(state, render.WithMargin(48), render.WithImages())
//	png, err := render.RenderPNG(state, render.WithScale(2))
//
// Connections whose endpoints are missing are never drawn.
package render

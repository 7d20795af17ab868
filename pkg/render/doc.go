// Package render draws partitioned call trees with Graphviz.
//
// [ToDOT] emits DOT source with one cluster per block, the critical path
// drawn in bold red and every edge labelled with its invocation rate and
// data overhead. Edges crossing a block boundary are dashed. [Render] turns
// DOT into SVG or PNG in-process through [github.com/goccy/go-graphviz]:
//
//	dot := render.ToDOT(t, res, path, render.Options{Detailed: true})
//	svg, err := render.Render(ctx, dot, render.FormatSVG)
//
// An infeasible result draws the bare tree without clusters.
package render

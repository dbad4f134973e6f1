package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/ajstarks/svgo"

	"github.com/provgraph/provis/pkg/errors"
	"github.com/provgraph/provis/pkg/layout"
)

// SnapshotOptions controls geometry snapshot rendering.
type SnapshotOptions struct {
	// Theme selects the color scheme: "light" (default) or "dark".
	Theme string

	// Label resolves a node index to the text drawn inside its box.
	// Nil leaves nodes unlabeled.
	Label func(index int) string

	// Summary reports whether a node index is a collapsed summary
	// placeholder, which renders with a dashed outline. Nil renders
	// every node solid.
	Summary func(index int) bool
}

// palette is one snapshot color scheme.
type palette struct {
	backdrop    color.RGBA
	nodeFill    color.RGBA
	summaryFill color.RGBA
	stroke      color.RGBA
	edge        color.RGBA
	text        color.RGBA
}

var (
	paletteLight = palette{
		backdrop:    color.RGBA{0xf9, 0xfa, 0xfb, 0xff},
		nodeFill:    color.RGBA{0xff, 0xff, 0xff, 0xff},
		summaryFill: color.RGBA{0xec, 0xef, 0xf1, 0xff},
		stroke:      color.RGBA{0x22, 0x22, 0x22, 0xff},
		edge:        color.RGBA{0x6b, 0x80, 0xbf, 0xff},
		text:        color.RGBA{0x11, 0x11, 0x11, 0xff},
	}
	paletteDark = palette{
		backdrop:    color.RGBA{0x11, 0x18, 0x27, 0xff},
		nodeFill:    color.RGBA{0x1f, 0x29, 0x37, 0xff},
		summaryFill: color.RGBA{0x37, 0x41, 0x51, 0xff},
		stroke:      color.RGBA{0xe5, 0xe7, 0xeb, 0xff},
		edge:        color.RGBA{0x93, 0xa4, 0xe8, 0xff},
		text:        color.RGBA{0xf9, 0xfa, 0xfb, 0xff},
	}
)

func themePalette(name string) (palette, bool) {
	switch name {
	case "", "light":
		return paletteLight, true
	case "dark":
		return paletteDark, true
	default:
		return palette{}, false
	}
}

// Snapshot draws the store's geometry to SVG: one rounded box per node,
// one polyline per edge, at the exact coordinates the layout computed.
// Unlike [RenderSVG] it runs no layout tool, so it is the cheapest way
// to inspect what a run produced.
//
// Store coordinates may be negative (strategies center layouts around
// the origin); the drawing is shifted into a positive viewport sized by
// the store's aggregate extent.
func Snapshot(w io.Writer, store *layout.Store, opts SnapshotOptions) error {
	pal, ok := themePalette(opts.Theme)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown snapshot theme %q (want light or dark)", opts.Theme)
	}

	st, ok := store.Stats()
	if !ok {
		return errors.New(errors.ErrCodeInvalidLayout, "nothing to draw: layout store is empty")
	}

	// Shift so the leftmost node box lands at the margin. Half the
	// widest node covers box extents beyond the center bounding box,
	// mirroring the Width/Height formulas.
	dx := layout.Margin + st.MaxNodeWidth/2 - st.XMin
	dy := layout.Margin + st.MaxNodeHeight/2 - st.YMin
	width := int(math.Ceil(store.Width()))
	height := int(math.Ceil(store.Height()))

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(pal.backdrop)))

	// Edges go under the node boxes.
	edgeStyle := fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", css(pal.edge))
	for _, e := range store.Edges() {
		xs := make([]int, len(e.XPoints))
		ys := make([]int, len(e.YPoints))
		for i := range e.XPoints {
			xs[i] = int(math.Round(e.XPoints[i] + dx))
			ys[i] = int(math.Round(e.YPoints[i] + dy))
		}
		canvas.Polyline(xs, ys, edgeStyle)
	}

	nodeStyle := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(pal.nodeFill), css(pal.stroke))
	summaryStyle := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2;stroke-dasharray:6,3", css(pal.summaryFill), css(pal.stroke))
	textStyle := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(pal.text))
	for _, n := range store.Nodes() {
		x := int(math.Round(n.X - n.Width/2 + dx))
		y := int(math.Round(n.Y - n.Height/2 + dy))
		style := nodeStyle
		if opts.Summary != nil && opts.Summary(n.Index) {
			style = summaryStyle
		}
		canvas.Roundrect(x, y, int(n.Width), int(n.Height), 6, 6, style)
		if opts.Label == nil {
			continue
		}
		if label := opts.Label(n.Index); label != "" {
			canvas.Text(int(math.Round(n.X+dx)), y+int(n.Height)/2+4, label, textStyle)
		}
	}

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Package design holds the read-only design tree the template compiler walks.
//
// A tree is a closed set of node variants: *Container (frames, groups,
// rectangles and every other shape with a box), *Text, *Vector and
// *Instance. Each variant carries only the properties that make sense for
// it; shared geometry, paints and effects live in the embedded Base.
// Trees are usually produced by FromFigma, but tests and other hosts build
// them directly.
package design

// Node is one element of a design tree. The set of implementations is closed.
type Node interface {
	base() *Base
}

// BaseOf returns the properties shared by every node variant.
func BaseOf(n Node) *Base { return n.base() }

// Base holds the properties every node kind has.
type Base struct {
	ID      string
	Name    string
	Type    string // the host's type name, e.g. FRAME, RECTANGLE
	Visible bool

	// Position is relative to the enclosing coordinate space, which for the
	// children of a group is the group's own parent.
	X, Y          float64
	Width, Height float64
	Rotation      float64 // degrees

	Fills      []Paint
	FillsMixed bool // fills differ across sub-parts; no fill tokens are derived
	Strokes    []Paint
	Effects    []Effect

	// Exported marks nodes with export presets; they are emitted as image references.
	Exported bool
}

func (b *Base) base() *Base { return b }

// ImageFill returns the hash of the image the node displays: the last
// visible image fill, which paints over the others. It is empty when the
// node has none or its fills are mixed.
func (b *Base) ImageFill() string {
	if b.FillsMixed {
		return ""
	}
	for i := len(b.Fills) - 1; i >= 0; i-- {
		if f := b.Fills[i]; f.Visible && f.ImageHash != "" {
			return f.ImageHash
		}
	}
	return ""
}

// Container is any node with a box: frames, groups, components, rectangles, ellipses.
type Container struct {
	Base
	Clips    bool
	Radius   Radius
	Stroke   StrokeWeight
	Layout   *Layout // nil when the node does not declare a flow axis
	Children []Node

	// LocalFrame is set for groups: their children's positions are relative
	// to the group's own parent rather than to the group, so the group's
	// position becomes the origin for them.
	LocalFrame bool
}

// Text is a text run.
type Text struct {
	Base
	Characters string
	Typography Typography
}

// Vector is a path shape.
type Vector struct {
	Base
	Paths  []Path
	Cap    string // NONE, ROUND, SQUARE, ...
	Join   string // MITER, ROUND, BEVEL
	Radius Radius
}

// Instance is a component instance. Its subtree is never expanded; the
// instance is emitted as a reference to a rendered image of itself.
type Instance struct {
	Container
}

// Children returns the child list of n, or nil for leaf variants.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Container:
		return v.Children
	case *Instance:
		return v.Children
	}
	return nil
}

// Color is an sRGB color with channels in [0, 1]. Alpha is optional: paints
// carry plain RGB, effects carry RGBA.
type Color struct {
	R, G, B float64
	A       *float64
}

// RGB builds a color without an alpha channel.
func RGB(r, g, b float64) Color { return Color{R: r, G: g, B: b} }

// RGBA builds a color with an alpha channel.
func RGBA(r, g, b, a float64) Color { return Color{R: r, G: g, B: b, A: &a} }

// Paint is one fill or stroke entry.
type Paint struct {
	Visible   bool
	Color     *Color // set for solid paints
	ImageHash string // set for image paints
}

// Radius is a corner radius, either uniform or per corner.
type Radius struct {
	Uniform float64
	Corners *Corners // non-nil when the corners differ
}

// Mixed reports whether the corners have different radii.
func (r Radius) Mixed() bool { return r.Corners != nil }

// Corners holds per-corner radii.
type Corners struct {
	TopLeft, TopRight, BottomLeft, BottomRight float64
}

// StrokeWeight is a stroke width, either uniform or per side.
type StrokeWeight struct {
	Uniform float64
	Sides   *Sides // non-nil when the sides differ
}

// Mixed reports whether the sides have different weights.
func (w StrokeWeight) Mixed() bool { return w.Sides != nil }

// Sides holds per-side stroke weights.
type Sides struct {
	Top, Bottom, Left, Right float64
}

// Layout describes an auto-layout (flow) container.
type Layout struct {
	Mode    string // HORIZONTAL or VERTICAL
	Primary string // MIN, CENTER, MAX, SPACE_BETWEEN
	Counter string

	PaddingTop, PaddingBottom, PaddingLeft, PaddingRight float64
	Gap                                                  float64
}

// Flow reports whether the layout arranges children along an axis.
func (l *Layout) Flow() bool {
	return l != nil && (l.Mode == "HORIZONTAL" || l.Mode == "VERTICAL")
}

// Typography holds the text style of a Text node.
type Typography struct {
	FontFamily string
	FontStyle  string // Regular, Bold, SemiBoldItalic, ...
	FontWeight float64
	FontSize   float64
	LineHeight LineHeight
	AlignH     string // LEFT, CENTER, RIGHT, JUSTIFIED
	AlignV     string // TOP, CENTER, BOTTOM
}

// LineHeight is a line height with its unit (PIXELS, PERCENT or AUTO).
type LineHeight struct {
	Unit  string
	Value float64
}

// Path is one vector path.
type Path struct {
	Data        string
	WindingRule string // NONZERO, EVENODD
}

// Effect is a shadow or blur.
type Effect struct {
	Type    string // DROP_SHADOW, INNER_SHADOW, LAYER_BLUR, BACKGROUND_BLUR
	Visible bool
	Radius  float64
	Spread  float64
	Color   Color
	OffsetX float64
	OffsetY float64
}

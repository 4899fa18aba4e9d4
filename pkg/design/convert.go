package design

import (
	"math"
	"strconv"

	"github.com/kataras/figma-happyx/pkg/figma"
)

// FromFigma converts a REST API node and its subtree into a design tree.
// The node becomes the root: its own position is taken relative to nothing
// (root positions are never emitted), and descendants are positioned
// relative to their nearest non-group ancestor, which is how Figma itself
// reports relativeTransform.
func FromFigma(n *figma.Node) Node {
	var origin figma.Vector
	if n.AbsoluteBoundingBox != nil {
		origin = figma.Vector{X: n.AbsoluteBoundingBox.X, Y: n.AbsoluteBoundingBox.Y}
	}
	return convert(n, origin)
}

// convert builds the design node for n. origin is the absolute position of
// the box n's coordinates are expressed in; it is only used when the
// response carries no relativeTransform.
func convert(n *figma.Node, origin figma.Vector) Node {
	b := convertBase(n, origin)

	switch n.Type {
	case figma.TypeText:
		return &Text{
			Base:       b,
			Characters: n.Characters,
			Typography: convertTypography(n.Style),
		}
	case figma.TypeVector:
		v := &Vector{
			Base:   b,
			Cap:    n.StrokeCap,
			Join:   n.StrokeJoin,
			Radius: convertRadius(n),
		}
		for _, p := range n.FillGeometry {
			v.Paths = append(v.Paths, Path{Data: p.Path, WindingRule: p.WindingRule})
		}
		return v
	}

	c := Container{
		Base:       b,
		Clips:      n.ClipsContent,
		Radius:     convertRadius(n),
		Stroke:     convertStrokeWeight(n),
		Layout:     convertLayout(n),
		LocalFrame: n.Type == figma.TypeGroup,
	}

	// Groups do not open a coordinate space of their own.
	childOrigin := origin
	if !c.LocalFrame && n.AbsoluteBoundingBox != nil {
		childOrigin = figma.Vector{X: n.AbsoluteBoundingBox.X, Y: n.AbsoluteBoundingBox.Y}
	}
	for i := range n.Children {
		c.Children = append(c.Children, convert(&n.Children[i], childOrigin))
	}

	if n.Type == figma.TypeInstance {
		return &Instance{Container: c}
	}
	return &c
}

func convertBase(n *figma.Node, origin figma.Vector) Base {
	b := Base{
		ID:       n.ID,
		Name:     n.Name,
		Type:     n.Type,
		Visible:  n.IsVisible(),
		Rotation: n.Rotation * 180 / math.Pi,
		Exported: len(n.ExportSettings) > 0,
	}

	switch {
	case n.RelativeTransform != nil:
		b.X, b.Y = n.RelativeTransform.Translation()
	case n.AbsoluteBoundingBox != nil:
		b.X = n.AbsoluteBoundingBox.X - origin.X
		b.Y = n.AbsoluteBoundingBox.Y - origin.Y
	}
	switch {
	case n.Size != nil:
		b.Width, b.Height = n.Size.X, n.Size.Y
	case n.AbsoluteBoundingBox != nil:
		b.Width, b.Height = n.AbsoluteBoundingBox.Width, n.AbsoluteBoundingBox.Height
	}

	for _, p := range n.Fills {
		b.Fills = append(b.Fills, convertPaint(p))
	}
	b.FillsMixed = fillsMixed(n)
	for _, p := range n.Strokes {
		b.Strokes = append(b.Strokes, convertPaint(p))
	}
	for _, e := range n.Effects {
		b.Effects = append(b.Effects, convertEffect(e))
	}
	return b
}

// fillsMixed reports whether the characters of a text node are painted
// with different fills. An override without fills inherits the node's.
func fillsMixed(n *figma.Node) bool {
	if len(n.CharacterStyleOverrides) == 0 {
		return false
	}

	fillsOf := func(id int) []figma.Paint {
		if id == 0 {
			return n.Fills
		}
		if s, ok := n.StyleOverrideTable[strconv.Itoa(id)]; ok && s.Fills != nil {
			return s.Fills
		}
		return n.Fills
	}

	// Characters past the end of the override list use the base style.
	count := len(n.CharacterStyleOverrides)
	if runes := len([]rune(n.Characters)); runes > count {
		count = runes
	}
	first := fillsOf(n.CharacterStyleOverrides[0])
	for i := 1; i < count; i++ {
		id := 0
		if i < len(n.CharacterStyleOverrides) {
			id = n.CharacterStyleOverrides[i]
		}
		if !samePaints(first, fillsOf(id)) {
			return true
		}
	}
	return false
}

func samePaints(a, b []figma.Paint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		pa, pb := a[i], b[i]
		if pa.Type != pb.Type || pa.IsVisible() != pb.IsVisible() || pa.ImageRef != pb.ImageRef {
			return false
		}
		if (pa.Color == nil) != (pb.Color == nil) || (pa.Color != nil && *pa.Color != *pb.Color) {
			return false
		}
	}
	return true
}

// convertPaint maps a REST paint. Solid paint colors lose their alpha
// channel: paint transparency lives in the paint's opacity, not the color.
func convertPaint(p figma.Paint) Paint {
	out := Paint{Visible: p.IsVisible()}
	switch p.Type {
	case "SOLID":
		if p.Color != nil {
			c := RGB(p.Color.R, p.Color.G, p.Color.B)
			out.Color = &c
		}
	case "IMAGE":
		out.ImageHash = p.ImageRef
	}
	return out
}

func convertEffect(e figma.Effect) Effect {
	out := Effect{
		Type:    e.Type,
		Visible: e.Visible,
		Radius:  e.Radius,
		Spread:  e.Spread,
	}
	if e.Color != nil {
		out.Color = RGBA(e.Color.R, e.Color.G, e.Color.B, e.Color.A)
	} else {
		out.Color = RGBA(0, 0, 0, 1)
	}
	if e.Offset != nil {
		out.OffsetX, out.OffsetY = e.Offset.X, e.Offset.Y
	}
	return out
}

// convertRadius reports rectangleCornerRadii as mixed only when the corners actually differ.
func convertRadius(n *figma.Node) Radius {
	r := Radius{Uniform: n.CornerRadius}
	if len(n.RectangleCornerRadii) != 4 {
		return r
	}
	rr := n.RectangleCornerRadii
	if rr[0] == rr[1] && rr[1] == rr[2] && rr[2] == rr[3] {
		r.Uniform = rr[0]
		return r
	}
	r.Corners = &Corners{TopLeft: rr[0], TopRight: rr[1], BottomRight: rr[2], BottomLeft: rr[3]}
	return r
}

// convertStrokeWeight reports individualStrokeWeights as mixed only when the sides actually differ.
func convertStrokeWeight(n *figma.Node) StrokeWeight {
	w := StrokeWeight{Uniform: n.StrokeWeight}
	s := n.IndividualStrokeWeights
	if s == nil {
		return w
	}
	if s.Top == s.Bottom && s.Bottom == s.Left && s.Left == s.Right {
		w.Uniform = s.Top
		return w
	}
	w.Sides = &Sides{Top: s.Top, Bottom: s.Bottom, Left: s.Left, Right: s.Right}
	return w
}

func convertLayout(n *figma.Node) *Layout {
	if n.LayoutMode == "" || n.LayoutMode == "NONE" {
		return nil
	}
	return &Layout{
		Mode:          n.LayoutMode,
		Primary:       defaultString(n.PrimaryAxisAlignItems, "MIN"),
		Counter:       defaultString(n.CounterAxisAlignItems, "MIN"),
		PaddingTop:    n.PaddingTop,
		PaddingBottom: n.PaddingBottom,
		PaddingLeft:   n.PaddingLeft,
		PaddingRight:  n.PaddingRight,
		Gap:           n.ItemSpacing,
	}
}

func convertTypography(s *figma.TypeStyle) Typography {
	if s == nil {
		return Typography{}
	}
	t := Typography{
		FontFamily: s.FontFamily,
		FontStyle:  s.FontStyle,
		FontWeight: s.FontWeight,
		FontSize:   s.FontSize,
		AlignH:     s.TextAlignHorizontal,
		AlignV:     s.TextAlignVertical,
	}
	switch s.LineHeightUnit {
	case "PIXELS":
		t.LineHeight = LineHeight{Unit: "PIXELS", Value: s.LineHeightPx}
	case "FONT_SIZE_%":
		t.LineHeight = LineHeight{Unit: "PERCENT", Value: s.LineHeightPercent}
	default:
		t.LineHeight = LineHeight{Unit: "AUTO"}
	}
	return t
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

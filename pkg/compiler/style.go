package compiler

import (
	"fmt"

	"github.com/kataras/figma-happyx/pkg/design"
)

// emitGeometry positions and sizes the node. Vectors get a transform
// attribute instead and size themselves from their path data. The root
// and children of flow containers are not positioned.
func emitGeometry(e *emission, n design.Node, origin Point, root, inFlow bool) {
	b := design.BaseOf(n)
	if _, ok := n.(*design.Vector); ok {
		e.attr("transform", fmt.Sprintf("translate(%d, %d)", Floor(b.X-origin.X), Floor(b.Y-origin.Y)))
		return
	}

	if !root && !inFlow {
		e.class(
			"absolute",
			"left-["+px(b.X-origin.X)+"]",
			"top-["+px(b.Y-origin.Y)+"]",
		)
	}
	e.class("w-["+px(b.Width)+"]", "h-["+px(b.Height)+"]")
}

func emitRotation(e *emission, b *design.Base) {
	if b.Rotation != 0 {
		e.class("rotate-["+fixed2(b.Rotation)+"deg]", "origin-center")
	}
}

func emitClip(e *emission, n design.Node) {
	var clips bool
	switch v := n.(type) {
	case *design.Container:
		clips = v.Clips
	case *design.Instance:
		clips = v.Clips
	}
	if clips {
		e.class("overflow-hidden")
	}
}

// emitFillColors adds a color token for every visible solid fill: a text
// color on text nodes, a background everywhere else. Image fills are
// handled by the traversal, which has to fetch their bytes.
func emitFillColors(e *emission, n design.Node) {
	b := design.BaseOf(n)
	if b.FillsMixed {
		return
	}
	_, isText := n.(*design.Text)
	for _, f := range b.Fills {
		if !f.Visible || f.Color == nil {
			continue
		}
		if isText {
			e.class("text-[" + HTMLColor(*f.Color) + "]")
		} else {
			e.class("bg-[" + HTMLColor(*f.Color) + "]")
		}
	}
}

// emitStrokes adds stroke colors, border widths, and the cap and join of vector strokes.
func emitStrokes(e *emission, n design.Node) {
	b := design.BaseOf(n)
	if len(b.Strokes) == 0 {
		return
	}

	v, isVector := n.(*design.Vector)
	for _, s := range b.Strokes {
		if !s.Visible || s.Color == nil {
			continue
		}
		if isVector {
			e.class("stroke-[" + HTMLColor(*s.Color) + "]")
		} else {
			e.class("border-[" + HTMLColor(*s.Color) + "]")
		}
	}

	if isVector {
		emitStrokeCaps(e, v)
		return
	}

	var w design.StrokeWeight
	switch c := n.(type) {
	case *design.Container:
		w = c.Stroke
	case *design.Instance:
		w = c.Stroke
	default:
		return
	}

	if !w.Mixed() {
		if w.Uniform > 0 {
			e.class("border-[" + px(w.Uniform) + "]")
		}
		return
	}
	sides := []struct {
		prefix string
		weight float64
	}{
		{"border-t", w.Sides.Top},
		{"border-b", w.Sides.Bottom},
		{"border-l", w.Sides.Left},
		{"border-r", w.Sides.Right},
	}
	for _, s := range sides {
		if s.weight > 0 {
			e.class(s.prefix + "-[" + px(s.weight) + "]")
		}
	}
}

func emitStrokeCaps(e *emission, v *design.Vector) {
	switch v.Cap {
	case "ROUND":
		e.rawAttr("stroke-linecap", "round")
	case "SQUARE":
		e.rawAttr("stroke-linecap", "square")
	}
	switch v.Join {
	case "ROUND":
		e.rawAttr("stroke-linejoin", "round")
	case "BEVEL":
		e.rawAttr("stroke-linejoin", "bevel")
	}
}

func emitRadius(e *emission, n design.Node) {
	var r design.Radius
	switch v := n.(type) {
	case *design.Container:
		r = v.Radius
	case *design.Instance:
		r = v.Radius
	case *design.Vector:
		r = v.Radius
	default:
		return
	}

	if r.Mixed() {
		e.class(
			"rounded-tl-["+px(r.Corners.TopLeft)+"]",
			"rounded-tr-["+px(r.Corners.TopRight)+"]",
			"rounded-bl-["+px(r.Corners.BottomLeft)+"]",
			"rounded-br-["+px(r.Corners.BottomRight)+"]",
		)
		return
	}
	if r.Uniform != 0 {
		e.class("rounded-[" + px(r.Uniform) + "]")
	}
}

var (
	justifyTokens = map[string]string{
		"MIN":           "justify-start",
		"CENTER":        "justify-center",
		"MAX":           "justify-end",
		"SPACE_BETWEEN": "justify-around",
	}
	itemsTokens = map[string]string{
		"MIN":           "items-start",
		"CENTER":        "items-center",
		"MAX":           "items-end",
		"SPACE_BETWEEN": "items-around",
	}
)

// emitLayout adds the flex tokens of a flow container and reports whether
// its children are laid out by it.
func emitLayout(e *emission, n design.Node) bool {
	c, ok := n.(*design.Container)
	if !ok || !c.Layout.Flow() {
		return false
	}
	l := c.Layout

	e.class("flex")
	if l.Mode == "VERTICAL" {
		e.class("flex-col")
	}
	e.class(
		"pt-["+px(l.PaddingTop)+"]",
		"pb-["+px(l.PaddingBottom)+"]",
		"pl-["+px(l.PaddingLeft)+"]",
		"pr-["+px(l.PaddingRight)+"]",
		"gap-["+px(l.Gap)+"]",
	)
	if tok, ok := justifyTokens[l.Primary]; ok {
		e.class(tok)
	}
	if tok, ok := itemsTokens[l.Counter]; ok {
		e.class(tok)
	}
	return true
}

var fontStyleWeights = map[string]int{
	"Thin":             100,
	"ThinItalic":       100,
	"ExtraLight":       200,
	"ExtraLightItalic": 200,
	"Light":            300,
	"LightItalic":      300,
	"Regular":          400,
	"RegularItalic":    400,
	"Medium":           500,
	"MediumItalic":     500,
	"SemiBold":         600,
	"SemiBoldItalic":   600,
	"Bold":             700,
	"BoldItalic":       700,
	"ExtraBold":        800,
	"ExtraBoldItalic":  800,
	"Black":            900,
	"BlackItalic":      900,
}

func fontWeight(t design.Typography) int {
	if w, ok := fontStyleWeights[t.FontStyle]; ok {
		return w
	}
	return Floor(t.FontWeight)
}

func emitTypography(e *emission, t *design.Text) {
	ty := t.Typography
	e.class("text-[" + px(ty.FontSize) + "]")

	if ty.LineHeight.Unit == "PIXELS" && Floor(ty.LineHeight.Value) != 0 {
		e.class("leading-[" + px(ty.LineHeight.Value) + "]")
	}

	switch ty.AlignV {
	case "TOP":
		e.class("align-top")
	case "BOTTOM":
		e.class("align-bottom")
	default:
		e.class("align-middle")
	}
	switch ty.AlignH {
	case "LEFT":
		e.class("text-left")
	case "RIGHT":
		e.class("text-right")
	default:
		e.class("text-center")
	}

	if w := fontWeight(ty); w != 0 && w != 400 {
		e.class(fmt.Sprintf("font-[%d]", w))
	}
}

// emitEffects turns visible shadows and blurs into style declarations, in declaration order.
func emitEffects(e *emission, effects []design.Effect) {
	for _, fx := range effects {
		if !fx.Visible {
			continue
		}
		switch fx.Type {
		case "DROP_SHADOW":
			spread := fx.Spread
			if spread == 0 {
				spread = 1.0
			}
			e.style(fmt.Sprintf("filter: drop-shadow(%spx %spx %spx %s);",
				fixed2(fx.OffsetX*3.0), fixed2(fx.OffsetY*3.0), fixed2(fx.Radius*spread), HTMLColor(fx.Color)))
		case "INNER_SHADOW":
			e.style(fmt.Sprintf("box-shadow: inset %s %s %s %s;",
				HTMLColor(fx.Color), shortest(fx.OffsetX), shortest(fx.OffsetY), shortest(fx.Radius)))
		case "LAYER_BLUR":
			e.style("filter: blur(" + shortest(fx.Radius) + "px)")
		case "BACKGROUND_BLUR":
			e.style("backdrop-filter: blur(" + shortest(fx.Radius) + "px)")
		}
	}
}

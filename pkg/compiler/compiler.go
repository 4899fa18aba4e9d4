// Package compiler translates a design tree into HappyX template markup.
//
// Every node becomes a tag with a parenthesized property block holding
// Tailwind-style utility classes, raw style declarations and attributes,
// followed by its children indented one level deeper:
//
//	tDiv(
//	  class = "w-[200px] h-[100px] bg-[#ff0000]",
//	):
//	  tDiv(
//	    class = "absolute left-[4px] top-[4px] w-[20px] h-[12px] text-[#000000] ...",
//	  ):
//	    "Hi"
//
// The compiler reads already resolved geometry; it does no layout of its own.
package compiler

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kataras/figma-happyx/pkg/design"
)

// DefaultIgnoreMarker excludes a node and its subtree when it appears in the node's name.
const DefaultIgnoreMarker = ".ignore"

// ErrNoImageSource is returned when the tree has an image fill but the
// compiler was built without an ImageSource.
var ErrNoImageSource = errors.New("compiler: image fill found but no image source configured")

// ImageSource retrieves the bytes of an image fill by its hash. It is the
// only call the compiler blocks on.
type ImageSource interface {
	ImageBytes(ctx context.Context, hash string) ([]byte, error)
}

// ImageSourceFunc adapts a function to ImageSource.
type ImageSourceFunc func(ctx context.Context, hash string) ([]byte, error)

// ImageBytes calls f(ctx, hash).
func (f ImageSourceFunc) ImageBytes(ctx context.Context, hash string) ([]byte, error) {
	return f(ctx, hash)
}

// Compiler turns design trees into markup. It holds configuration only and
// is safe for concurrent use; each Compile call gets fresh state.
type Compiler struct {
	images       ImageSource
	ignoreMarker string
	depth        int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithImages sets the source image fills are resolved from.
func WithImages(src ImageSource) Option {
	return func(c *Compiler) { c.images = src }
}

// WithIgnoreMarker changes the name marker that excludes nodes. An empty marker disables name filtering.
func WithIgnoreMarker(marker string) Option {
	return func(c *Compiler) { c.ignoreMarker = marker }
}

// WithIndent sets the indentation depth of the root node.
func WithIndent(depth int) Option {
	return func(c *Compiler) { c.depth = depth }
}

// New returns a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{ignoreMarker: DefaultIgnoreMarker}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile renders root and its visible subtree. If any image retrieval
// fails the whole compilation fails and no markup is returned. A root that
// is itself hidden or ignored yields an empty string.
func (c *Compiler) Compile(ctx context.Context, root design.Node) (string, error) {
	if root == nil {
		return "", errors.New("compiler: nil root")
	}

	comp := &compilation{
		Compiler: c,
		ctx:      ctx,
		frames:   &FrameStack{},
	}
	out, err := comp.visit(root, c.depth, true, false)
	if err != nil {
		return "", err
	}
	return out, nil
}

// compilation is the state of one Compile call.
type compilation struct {
	*Compiler
	ctx    context.Context
	frames *FrameStack
}

func (c *compilation) skip(b *design.Base) bool {
	if !b.Visible {
		return true
	}
	return c.ignoreMarker != "" && strings.Contains(b.Name, c.ignoreMarker)
}

// visit emits n and its subtree and returns the rendered fragment, or ""
// when n is skipped.
func (c *compilation) visit(n design.Node, depth int, root, inFlow bool) (string, error) {
	b := design.BaseOf(n)
	if c.skip(b) {
		return "", nil
	}

	e := &emission{depth: depth}
	tag, vectorContainer := Classify(n)
	e.tag = tag
	if vectorContainer {
		e.class("fill-transparent")
	}

	emitGeometry(e, n, c.frames.Origin(), root, inFlow)
	emitRotation(e, b)
	emitClip(e, n)

	if isAssetFallback(n) {
		emitAssetReference(e, b)
		return e.render(), nil
	}

	if v, ok := n.(*design.Vector); ok {
		emitPaths(e, v)
	}

	emitFillColors(e, n)
	if err := c.resolveImageFills(e, b); err != nil {
		return "", err
	}

	emitStrokes(e, n)
	emitRadius(e, n)
	childrenInFlow := emitLayout(e, n)

	text, isText := n.(*design.Text)
	if isText {
		emitTypography(e, text)
	}
	emitEffects(e, b.Effects)
	if isText {
		e.line(quoteText(text.Characters))
	}

	if err := c.visitChildren(e, n, childrenInFlow); err != nil {
		return "", err
	}
	return e.render(), nil
}

// resolveImageFills switches the node to an image tag and embeds the bytes
// of its topmost visible image fill. Retrieval blocks, and a failure aborts
// the compilation.
func (c *compilation) resolveImageFills(e *emission, b *design.Base) error {
	hash := b.ImageFill()
	if hash == "" {
		return nil
	}
	e.tag = TagImage
	if c.images == nil {
		return errors.Wrapf(ErrNoImageSource, "node %q", b.Name)
	}
	data, err := c.images.ImageBytes(c.ctx, hash)
	if err != nil {
		return errors.Wrapf(err, "image fill %s of node %q", hash, b.Name)
	}
	e.attr("src", DataURI(data))
	return nil
}

func (c *compilation) visitChildren(e *emission, n design.Node, inFlow bool) error {
	children := design.Children(n)
	if len(children) == 0 {
		return nil
	}

	if g, ok := n.(*design.Container); ok && g.LocalFrame {
		defer c.frames.Enter(g.X, g.Y)()
	}

	for _, child := range children {
		fragment, err := c.visit(child, e.depth+1, false, inFlow)
		if err != nil {
			return err
		}
		e.child(fragment)
	}
	return nil
}

package compiler

import "github.com/kataras/figma-happyx/pkg/design"

// Output tags.
const (
	TagBox   = "tDiv"
	TagPath  = "tPath"
	TagSvg   = "tSvg"
	TagImage = "tImg"
)

// Classify picks the output tag for n. vectorContainer is true when n has
// at least one child and every child is a vector; such nodes become an
// svg element and get a transparent fill. The image tag is not decided
// here: it overrides the result once an image fill is seen.
func Classify(n design.Node) (tag string, vectorContainer bool) {
	if _, ok := n.(*design.Vector); ok {
		return TagPath, false
	}

	children := design.Children(n)
	if len(children) == 0 {
		return TagBox, false
	}
	for _, c := range children {
		if _, ok := c.(*design.Vector); !ok {
			return TagBox, false
		}
	}
	return TagSvg, true
}

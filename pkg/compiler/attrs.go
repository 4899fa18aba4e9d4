package compiler

import (
	"strings"

	"github.com/kataras/figma-happyx/pkg/design"
)

// AssetExtension is appended to a node's name to reference its rendered image.
const AssetExtension = ".png"

// emitPaths adds one path-data and one winding-rule attribute per path.
func emitPaths(e *emission, v *design.Vector) {
	for _, p := range v.Paths {
		e.rawAttr("d", p.Data)
		e.rawAttr("fill-rule", strings.ToLower(p.WindingRule))
	}
}

// isAssetFallback reports whether n is emitted as a reference to a rendered
// image of itself instead of being translated: component instances and
// nodes the designer marked for export.
func isAssetFallback(n design.Node) bool {
	if _, ok := n.(*design.Instance); ok {
		return true
	}
	return design.BaseOf(n).Exported
}

// emitAssetReference adds the single child line of an asset fallback node.
func emitAssetReference(e *emission, b *design.Base) {
	e.line("image " + AssetName(b.Name))
}

// AssetName is the file name an asset fallback node refers to.
func AssetName(nodeName string) string {
	return nodeName + AssetExtension
}

package figma

// FileResponse represents the complete response from the Figma file API endpoint.
// It contains the file metadata, document structure, published styles, and schema version information.
type FileResponse struct {
	Name          string           `json:"name"`
	LastModified  string           `json:"lastModified"`
	ThumbnailURL  string           `json:"thumbnailUrl"`
	Version       string           `json:"version"`
	Document      Node             `json:"document"`
	Styles        map[string]Style `json:"styles"`
	SchemaVersion int              `json:"schemaVersion"`
}

// NodesResponse represents the response from the Figma nodes API endpoint when fetching specific nodes.
// It contains file metadata and a map of node IDs to their corresponding NodeData.
type NodesResponse struct {
	Name         string              `json:"name"`
	LastModified string              `json:"lastModified"`
	Version      string              `json:"version"`
	Nodes        map[string]NodeData `json:"nodes"`
}

// NodeData wraps a node with its document structure and optional component/style information.
// This is the structure returned for each requested node in a NodesResponse.
type NodeData struct {
	Document   Node                 `json:"document"`
	Components map[string]Component `json:"components,omitempty"`
	Styles     map[string]Style     `json:"styles,omitempty"`
}

// Component represents a Figma component definition with its metadata.
type Component struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Style represents a published Figma style with its basic properties.
type Style struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StyleType   string `json:"style_type"`
}

// ImagesResponse is returned by the render endpoint (GET /v1/images/:key).
// Images maps node IDs to temporary download URLs; a null URL means the node could not be rendered.
type ImagesResponse struct {
	Err    string            `json:"err"`
	Images map[string]string `json:"images"`
}

// ImageFillsResponse is returned by GET /v1/files/:key/images and maps the
// image hashes referenced by IMAGE paints (imageRef) to download URLs.
type ImageFillsResponse struct {
	Error  bool `json:"error"`
	Status int  `json:"status"`
	Meta   struct {
		Images map[string]string `json:"images"`
	} `json:"meta"`
}

// Node types the generator distinguishes.
const (
	TypeFrame    = "FRAME"
	TypeGroup    = "GROUP"
	TypeText     = "TEXT"
	TypeVector   = "VECTOR"
	TypeInstance = "INSTANCE"
)

// Node represents a single element in the Figma document tree hierarchy.
// Only the properties the template generator consumes are decoded. Geometry
// fields (Size, RelativeTransform, FillGeometry) are present only when the
// file is requested with geometry=paths.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Visible  *bool  `json:"visible,omitempty"` // absent means visible
	Children []Node `json:"children,omitempty"`

	AbsoluteBoundingBox *Rectangle      `json:"absoluteBoundingBox,omitempty"`
	RelativeTransform   *Transform      `json:"relativeTransform,omitempty"`
	Size                *Vector         `json:"size,omitempty"`
	Rotation            float64         `json:"rotation,omitempty"` // radians
	ClipsContent        bool            `json:"clipsContent,omitempty"`
	ExportSettings      []ExportSetting `json:"exportSettings,omitempty"`

	Fills                   []Paint        `json:"fills,omitempty"`
	Strokes                 []Paint        `json:"strokes,omitempty"`
	StrokeWeight            float64        `json:"strokeWeight,omitempty"`
	IndividualStrokeWeights *StrokeWeights `json:"individualStrokeWeights,omitempty"`
	StrokeCap               string         `json:"strokeCap,omitempty"`
	StrokeJoin              string         `json:"strokeJoin,omitempty"`
	CornerRadius            float64        `json:"cornerRadius,omitempty"`
	RectangleCornerRadii    []float64      `json:"rectangleCornerRadii,omitempty"` // top-left, top-right, bottom-right, bottom-left
	Effects                 []Effect       `json:"effects,omitempty"`
	FillGeometry            []Path         `json:"fillGeometry,omitempty"`

	LayoutMode            string  `json:"layoutMode,omitempty"`
	PrimaryAxisAlignItems string  `json:"primaryAxisAlignItems,omitempty"`
	CounterAxisAlignItems string  `json:"counterAxisAlignItems,omitempty"`
	PaddingLeft           float64 `json:"paddingLeft,omitempty"`
	PaddingRight          float64 `json:"paddingRight,omitempty"`
	PaddingTop            float64 `json:"paddingTop,omitempty"`
	PaddingBottom         float64 `json:"paddingBottom,omitempty"`
	ItemSpacing           float64 `json:"itemSpacing,omitempty"`

	Characters string     `json:"characters,omitempty"`
	Style      *TypeStyle `json:"style,omitempty"`

	// Per-character style ids into StyleOverrideTable; 0 and missing
	// trailing entries use Style.
	CharacterStyleOverrides []int                `json:"characterStyleOverrides,omitempty"`
	StyleOverrideTable      map[string]TypeStyle `json:"styleOverrideTable,omitempty"`
}

// IsVisible reports whether the node is rendered. The API omits the field for visible nodes.
func (n *Node) IsVisible() bool {
	return n.Visible == nil || *n.Visible
}

// Color represents an RGBA color with float values ranging from 0 to 1.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Paint represents a fill or stroke applied to a Figma node.
// SOLID paints carry Color; IMAGE paints carry ImageRef, the hash resolved by GetImageFills.
type Paint struct {
	Type      string   `json:"type"`
	Visible   *bool    `json:"visible,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	Color     *Color   `json:"color,omitempty"`
	ImageRef  string   `json:"imageRef,omitempty"`
	ScaleMode string   `json:"scaleMode,omitempty"`
}

// IsVisible reports whether the paint is enabled. The API omits the field for visible paints.
func (p *Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// Effect represents a visual effect applied to a Figma node such as drop shadows, inner shadows, or blur effects.
type Effect struct {
	Type      string  `json:"type"`
	Visible   bool    `json:"visible"`
	Radius    float64 `json:"radius,omitempty"`
	Color     *Color  `json:"color,omitempty"`
	Offset    *Vector `json:"offset,omitempty"`
	Spread    float64 `json:"spread,omitempty"`
	BlendMode string  `json:"blendMode,omitempty"`
}

// Vector represents a 2D coordinate or offset with X and Y values.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is a 2x3 affine matrix [[a, c, tx], [b, d, ty]] positioning a node inside its parent.
type Transform [2][3]float64

// Translation returns the (tx, ty) component of the transform.
func (t Transform) Translation() (float64, float64) {
	return t[0][2], t[1][2]
}

// Path is one entry of a node's fill geometry: SVG path data plus its winding rule (NONZERO or EVENODD).
type Path struct {
	Path        string `json:"path"`
	WindingRule string `json:"windingRule"`
}

// StrokeWeights holds per-side stroke weights, present when the sides differ.
type StrokeWeights struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// ExportSetting describes an export preset the designer attached to a node.
type ExportSetting struct {
	Suffix string `json:"suffix"`
	Format string `json:"format"`
}

// TypeStyle represents text styling properties from Figma.
type TypeStyle struct {
	FontFamily          string  `json:"fontFamily"`
	FontPostScriptName  string  `json:"fontPostScriptName"`
	FontStyle           string  `json:"fontStyle,omitempty"`
	FontWeight          float64 `json:"fontWeight"`
	FontSize            float64 `json:"fontSize"`
	LineHeightPx        float64 `json:"lineHeightPx"`
	LineHeightPercent   float64 `json:"lineHeightPercent"`
	LineHeightUnit      string  `json:"lineHeightUnit,omitempty"` // PIXELS, FONT_SIZE_%, INTRINSIC_%
	LetterSpacing       float64 `json:"letterSpacing"`
	TextAlignHorizontal string  `json:"textAlignHorizontal"`
	TextAlignVertical   string  `json:"textAlignVertical"`
	Fills               []Paint `json:"fills,omitempty"` // only set in style overrides
}

// Rectangle represents a bounding box with position (X, Y) and dimensions (Width, Height).
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

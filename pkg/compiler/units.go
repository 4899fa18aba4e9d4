package compiler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kataras/figma-happyx/pkg/design"
)

// HTMLColor formats c as #rrggbb, or #rrggbbaa when c has an alpha channel.
// Each channel is round(v*255) written as two lowercase hex digits.
func HTMLColor(c design.Color) string {
	var b strings.Builder
	b.Grow(9)
	b.WriteByte('#')
	b.WriteString(hexChannel(c.R))
	b.WriteString(hexChannel(c.G))
	b.WriteString(hexChannel(c.B))
	if c.A != nil {
		b.WriteString(hexChannel(*c.A))
	}
	return b.String()
}

func hexChannel(v float64) string {
	n := int(math.Round(v * 255))
	n = max(0, min(255, n))
	return fmt.Sprintf("%02x", n)
}

// Floor truncates a pixel value to the integer below it.
func Floor(v float64) int {
	return int(math.Floor(v))
}

func px(v float64) string {
	return strconv.Itoa(Floor(v)) + "px"
}

// fixed2 formats v with two decimals.
func fixed2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// shortest formats v with as few digits as needed (3, 1.5, -0.25).
func shortest(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DataURI encodes image bytes as a base64 data URI. The media type is
// sniffed from the content; anything that is not an image is labelled
// image/jpeg.
func DataURI(data []byte) string {
	mime := "image/jpeg"
	if m := mimetype.Detect(data); strings.HasPrefix(m.String(), "image/") {
		mime = m.String()
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// quoteText renders s as a double-quoted string literal, leaving non-ASCII
// and HTML characters as they are.
func quoteText(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

package iiif

import (
	"strconv"
	"strings"

	"github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/geom"
)

// FormatSelector returns "<canvasID>#xywh=x,y,w,h".
func FormatSelector(canvasID string, r geom.Rect) string {
	var b strings.Builder
	b.WriteString(canvasID)
	b.WriteString("#xywh=")
	for i, v := range []float64{r.X, r.Y, r.W, r.H} {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatNum(v))
	}
	return b.String()
}

// ParseSelector splits a target into its source and xywh region. The unit
// prefix "pixel:" is accepted; "percent:" is not, since the board has no
// reference size to resolve it against. A zero width and height denote a
// point.
func ParseSelector(target string) (string, geom.Rect, error) {
	source, frag, ok := strings.Cut(target, "#")
	if !ok {
		return "", geom.Rect{}, errors.New(errors.ErrCodeInvalidSelector, "target %q has no fragment", target)
	}
	var value string
	for _, part := range strings.Split(frag, "&") {
		if v, ok := strings.CutPrefix(part, "xywh="); ok {
			value = v
			break
		}
	}
	if value == "" {
		return "", geom.Rect{}, errors.New(errors.ErrCodeInvalidSelector, "target %q has no xywh fragment", target)
	}
	if strings.HasPrefix(value, "percent:") {
		return "", geom.Rect{}, errors.New(errors.ErrCodeInvalidSelector, "percent selectors are not supported: %q", target)
	}
	value = strings.TrimPrefix(value, "pixel:")

	fields := strings.Split(value, ",")
	if len(fields) != 4 {
		return "", geom.Rect{}, errors.New(errors.ErrCodeInvalidSelector, "xywh needs 4 values, got %d in %q", len(fields), target)
	}
	var n [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", geom.Rect{}, errors.Wrap(errors.ErrCodeInvalidSelector, err, "xywh value %q", f)
		}
		n[i] = v
	}
	if n[2] < 0 || n[3] < 0 {
		return "", geom.Rect{}, errors.New(errors.ErrCodeInvalidSelector, "negative size in %q", target)
	}
	return source, geom.Rect{X: n[0], Y: n[1], W: n[2], H: n[3]}, nil
}

func formatNum(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

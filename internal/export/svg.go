package export

import (
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/liftmc/internal/stats"
)

const (
	background = "#0a0a0a"
	axisColor  = "#444466"
	textColor  = "#888899"
)

// HistogramSVG draws h as vertical bars. An empty histogram gives "".
func HistogramSVG(h stats.Histogram, width, height int, fill string) string {
	if h.Bins() == 0 {
		return ""
	}
	maxCount := floats.Max(h.Counts)
	if maxCount == 0 {
		maxCount = 1
	}

	const margin = 30
	plotW := float64(width - 2*margin)
	plotH := float64(height - 2*margin)
	barW := plotW / float64(h.Bins())

	var sb strings.Builder
	header(&sb, width, height)

	sb.WriteString(fmt.Sprintf(`<g fill="%s">
`, fill))
	for i, c := range h.Counts {
		barH := c / maxCount * plotH
		x := float64(margin) + float64(i)*barW
		y := float64(margin) + plotH - barH
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, x, y, barW*0.9, barH))
	}
	sb.WriteString("</g>\n")

	base := float64(margin) + plotH
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s"/>
`, margin, base, width-margin, base, axisColor))
	sb.WriteString(fmt.Sprintf(`<g fill="%s" font-family="monospace" font-size="11">
<text x="%d" y="%d">%.0f N</text>
<text x="%d" y="%d" text-anchor="end">%.0f N</text>
</g>
`, textColor, margin, height-margin/3, h.Edges[0], width-margin, height-margin/3, h.Edges[h.Bins()]))

	sb.WriteString("</svg>")
	return sb.String()
}

// ConvergenceSVG draws series as a polyline, typically a running mean.
// Fewer than two points give "".
func ConvergenceSVG(series []float64, width, height int, stroke string) string {
	if len(series) < 2 {
		return ""
	}

	minY, maxY := floats.Min(series), floats.Max(series)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(series) - 1)

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))

	for i, v := range series {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// WriteFile writes an SVG document, refusing an empty one.
func WriteFile(path, svg string) error {
	if svg == "" {
		return fmt.Errorf("export %s: nothing to draw", path)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/iontrim/internal/stats"
	"github.com/san-kum/iontrim/internal/trim"
)

const margin = 40.0

func header(sb *strings.Builder, width, height int, title string) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="%.0f" y="24" fill="#00ffff" font-family="monospace" font-size="14">%s</text>
`, width, height, width, height, margin, html.EscapeString(title)))
}

func axisLabels(sb *strings.Builder, width, height int, lo, hi float64, unit string) {
	y := float64(height) - margin + 16
	sb.WriteString(fmt.Sprintf(`<g fill="#888899" font-family="monospace" font-size="11">
<text x="%.0f" y="%.0f">%.0f</text>
<text x="%.0f" y="%.0f" text-anchor="end">%.0f %s</text>
</g>
`, margin, y, lo, float64(width)-margin, y, hi, unit))
}

// HistogramToSVG draws the inner bins of a depth histogram as bars.
func HistogramToSVG(h *stats.Histogram, width, height int, title string) string {
	inner := h.Inner(0)

	var max int64
	for _, c := range inner {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		max = 1
	}

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	barW := plotW / float64(len(inner))

	var sb strings.Builder
	header(&sb, width, height, title)
	sb.WriteString(fmt.Sprintf(`<line x1="%.0f" y1="%.0f" x2="%.0f" y2="%.0f" stroke="#444466"/>
<g fill="#00ccff">
`, margin, float64(height)-margin, float64(width)-margin, float64(height)-margin))

	for i, c := range inner {
		if c == 0 {
			continue
		}
		bh := float64(c) / float64(max) * plotH
		x := margin + float64(i)*barW
		y := float64(height) - margin - bh
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"><title>%d</title></rect>
`, x, y, barW*0.9, bh, c))
	}

	sb.WriteString("</g>\n")
	axisLabels(&sb, width, height, h.Lo, h.Hi, "Å")
	sb.WriteString("</svg>")
	return sb.String()
}

// PositionsToSVG plots the final x-z position of every ion that stopped
// inside the target, depth running downwards.
func PositionsToSVG(ions []trim.Ion, width, height int, title string) string {
	var pts [][2]float64
	for _, ion := range ions {
		if ion.Inside {
			pts = append(pts, [2]float64{ion.Pos[0], ion.Pos[2]})
		}
	}
	if len(pts) == 0 {
		return ""
	}

	minX, maxX := pts[0][0], pts[0][0]
	minZ, maxZ := pts[0][1], pts[0][1]
	for _, p := range pts {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minZ, maxZ = min(minZ, p[1]), max(maxZ, p[1])
	}
	rangeX := maxX - minX
	rangeZ := maxZ - minZ
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin

	var sb strings.Builder
	header(&sb, width, height, title)
	sb.WriteString(`<g fill="#00ff88" fill-opacity="0.6">
`)
	for _, p := range pts {
		cx := margin + (p[0]-minX)/rangeX*plotW
		cy := margin + (p[1]-minZ)/rangeZ*plotH
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.5"/>
`, cx, cy))
	}
	sb.WriteString("</g>\n")
	axisLabels(&sb, width, height, minX, maxX, "Å (x)")
	sb.WriteString("</svg>")
	return sb.String()
}

package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/reactorsim/internal/history"
)

// Trace selects one projection field and its plot color.
type Trace struct {
	Label string
	Color string
	Pick  func(history.Projection) float64
}

// DefaultTraces are the strip-chart channels most runs care about.
func DefaultTraces() []Trace {
	return []Trace{
		{"Power", "#00ff00", func(p history.Projection) float64 { return p.Neutrons }},
		{"Fuel Temp", "#ff5f00", func(p history.Projection) float64 { return p.FuelTemp }},
		{"Rod Pos", "#00afff", func(p history.Projection) float64 { return p.RodPos }},
	}
}

// TraceSVG renders the projection series as stacked strip charts, one
// panel per trace, each autoscaled to its own range.
func TraceSVG(series []history.Projection, traces []Trace, width, panelHeight int) string {
	if len(series) < 2 || len(traces) == 0 {
		return ""
	}

	height := panelHeight * len(traces)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	t0 := series[0].Time
	t1 := series[len(series)-1].Time
	tRange := t1 - t0
	if tRange == 0 {
		tRange = 1
	}

	for ti, tr := range traces {
		lo, hi := tr.Pick(series[0]), tr.Pick(series[0])
		for _, p := range series {
			v := tr.Pick(p)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		vRange := hi - lo
		if vRange == 0 {
			vRange = 1
		}
		lo -= vRange * 0.1
		hi += vRange * 0.1
		vRange = hi - lo

		top := float64(ti * panelHeight)
		sb.WriteString(fmt.Sprintf(
			`<text x="6" y="%.1f" fill="%s" font-family="monospace" font-size="12">%s</text>
`,
			top+16, tr.Color, tr.Label))

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, tr.Color))
		for i, p := range series {
			x := (p.Time - t0) / tRange * float64(width)
			y := top + float64(panelHeight) - (tr.Pick(p)-lo)/vRange*float64(panelHeight)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteTraceSVG renders the default traces to a file.
func WriteTraceSVG(path string, series []history.Projection) error {
	svg := TraceSVG(series, DefaultTraces(), 960, 160)
	return os.WriteFile(path, []byte(svg), 0644)
}

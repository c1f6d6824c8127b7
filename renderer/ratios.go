package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/folio"
)

// RatiosMarkdown renders the valuation ratios of symbol: the statistics
// of each series and the value at each fundamentals publication.
// Series without points are left out.
func RatiosMarkdown(symbol string, r folio.Ratios) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Valuation ratios of %s\n\n", symbol)
	empty := true
	for _, kind := range []folio.RatioKind{folio.PE, folio.PFCF, folio.PS} {
		s := r.Series(kind)
		ConditionalBlock(&b, func(w io.Writer) bool {
			if len(s.Points) == 0 {
				return false
			}
			empty = false
			renderSeries(w, s)
			return true
		})
	}
	if empty {
		b.WriteString("No ratio can be computed from the available market data.\n")
	}
	return b.String()
}

func renderSeries(w io.Writer, s *folio.RatioSeries) {
	last := s.Points[len(s.Points)-1]
	fmt.Fprintf(w, "## %s\n\n", s.Kind)
	fmt.Fprintf(w, "Current: **%.2f** on %s\n\n", last.Value, last.Time.Format("2006-01-02"))
	fmt.Fprintf(w, "| High | Median | Low |\n|---:|---:|---:|\n")
	fmt.Fprintf(w, "| %s | %s | %s |\n\n", optional(s.Stats.High), optional(s.Stats.Median), optional(s.Stats.Low))

	if len(s.Markers) == 0 {
		return
	}
	fmt.Fprintf(w, "| Published | Ratio | Source | Metric |\n|:---|---:|:---|---:|\n")
	for _, m := range s.Markers {
		fmt.Fprintf(w, "| %s | %.2f | %s | %s |\n", m.SourceAsOf, m.Value, m.SourceKind, optional(m.SourceValue))
	}
	fmt.Fprintln(w)
}

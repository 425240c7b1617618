// Package report renders agreement reports for people and for other programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"goagree/domain/agreement"
	"goagree/internal/config"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Render writes reports in the requested format
func Render(w io.Writer, format string, reports []*agreement.Report) error {
	switch format {
	case config.FormatText, "":
		return Text(w, reports)
	case config.FormatJSON:
		return JSON(w, reports)
	case config.FormatMarkdown:
		_, err := io.WriteString(w, Markdown(reports))
		return err
	case config.FormatHTML:
		_, err := w.Write(HTML(reports))
		return err
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// Text prints the headline statistics followed by the per-participant counts
func Text(w io.Writer, reports []*agreement.Report) error {
	var b strings.Builder
	for i, rep := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		res := rep.Result
		fmt.Fprintf(&b, "Source: %s\n", sourceLabel(rep))
		fmt.Fprintf(&b, "Bias: %v\n", res.Bias)
		fmt.Fprintf(&b, "SD: %v\n", res.SD)
		fmt.Fprintf(&b, "LOA: %v - %v\n", res.LOALower, res.LOAUpper)
		fmt.Fprintf(&b, "CommonSense: %.4f\n", res.CommonSense)
		fmt.Fprintf(&b, "Participants: %d  Observations: %d\n", res.ParticipantCount(), res.TotalObservations())
		fmt.Fprintf(&b, "Variance: within %.6g  between %.6g  total %.6g  (n0 %.4f)\n",
			res.Components.WithinVariance, res.Components.BetweenVariance, res.Components.TotalVariance, res.Components.N0)
		if res.Components.BetweenClamped {
			fmt.Fprintf(&b, "  between-participant estimate %.6g clamped to 0\n", res.Components.RawBetweenVariance)
		}
		b.WriteString("Observations per participant:\n")
		for _, p := range res.ParticipantOrder {
			fmt.Fprintf(&b, "  %s\t%d\n", p, res.Obsv[p])
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSON writes a single report as an object and several as an array
func JSON(w io.Writer, reports []*agreement.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(reports[0])
	}
	return enc.Encode(reports)
}

// Markdown renders a summary table and one participant table per report
func Markdown(reports []*agreement.Report) string {
	var b strings.Builder
	b.WriteString("# Repeated-measures Bland-Altman agreement\n\n")
	b.WriteString("| Source | Participants | Observations | Bias | SD | LOA lower | LOA upper | CommonSense |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, rep := range reports {
		res := rep.Result
		fmt.Fprintf(&b, "| %s | %d | %d | %.4f | %.4f | %.4f | %.4f | %.2f%% |\n",
			sourceLabel(rep), res.ParticipantCount(), res.TotalObservations(),
			res.Bias, res.SD, res.LOALower, res.LOAUpper, res.CommonSense*100)
	}

	for _, rep := range reports {
		res := rep.Result
		fmt.Fprintf(&b, "\n## %s\n\n", sourceLabel(rep))
		fmt.Fprintf(&b, "One-way ANOVA: MS between %.6g (df %d), MS within %.6g (df %d), F %.4g, p %.4g.\n\n",
			res.ANOVA.MSBetween, res.ANOVA.DFBetween, res.ANOVA.MSWithin, res.ANOVA.DFWithin, res.ANOVA.F, res.ANOVA.PValue)
		fmt.Fprintf(&b, "Variance components: within %.6g, between %.6g, n0 %.4f.", res.Components.WithinVariance,
			res.Components.BetweenVariance, res.Components.N0)
		if res.Components.BetweenClamped {
			b.WriteString(" The between-participant estimate was negative and is reported as 0.")
		}
		b.WriteString("\n\n| Participant | Observations | Mean | SD | Min | Max |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, p := range res.Participants {
			fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f | %.4f |\n", p.Participant, p.Count, p.Mean, p.StdDev, p.Min, p.Max)
		}
	}
	return b.String()
}

// HTML renders the markdown report as a standalone HTML page
func HTML(reports []*agreement.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(reports)))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Repeated-measures Bland-Altman agreement",
	})
	return markdown.Render(doc, renderer)
}

func sourceLabel(rep *agreement.Report) string {
	if rep.Column == "" {
		return rep.Source
	}
	return rep.Source + " [" + rep.Column + "]"
}

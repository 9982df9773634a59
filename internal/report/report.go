// Package report renders a stored AnalysisResult as a machine-readable JSON
// document or a human-readable HTML document. The identifier is always
// masked in rendered output — reports leave the authenticated context.
package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"veridian/diligence-api/internal/document"
	"veridian/diligence-api/internal/domain"
)

// Formats accepted by Render.
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// Document is one rendered report.
type Document struct {
	ContentType string
	Body        []byte
}

// Render produces a report in the requested format. Unknown formats render
// as JSON.
func Render(res *domain.AnalysisResult, format string) (Document, error) {
	if strings.EqualFold(format, FormatHTML) {
		return renderHTML(res)
	}
	return renderJSON(res)
}

// view is the masked shape shared by both renderers.
type view struct {
	ReportID       string                `json:"report_id"`
	Document       string                `json:"document"` // masked
	Kind           string                `json:"kind"`
	Entity         domain.EntityInfo     `json:"entity"`
	OverallScore   int                   `json:"overall_score"`
	RiskLevel      string                `json:"risk_level"`
	TotalFindings  int                   `json:"total_findings"`
	CriticalIssues int                   `json:"critical_issues"`
	Modules        []domain.ModuleResult `json:"modules"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

func makeView(res *domain.AnalysisResult) view {
	return view{
		ReportID:       res.ID,
		Document:       document.Mask(res.Document, res.Kind),
		Kind:           res.Kind,
		Entity:         res.EntityInfo,
		OverallScore:   res.OverallScore,
		RiskLevel:      res.RiskLevel,
		TotalFindings:  res.TotalFindings,
		CriticalIssues: res.CriticalIssues,
		Modules:        res.Modules,
		GeneratedAt:    res.GeneratedAt,
	}
}

func renderJSON(res *domain.AnalysisResult) (Document, error) {
	body, err := json.MarshalIndent(makeView(res), "", "  ")
	if err != nil {
		return Document{}, err
	}
	return Document{ContentType: "application/json; charset=utf-8", Body: body}, nil
}

func renderHTML(res *domain.AnalysisResult) (Document, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, makeView(res)); err != nil {
		return Document{}, err
	}
	return Document{ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Due Diligence Report {{.Document}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; vertical-align: top; }
.risk-low { color: #1a7f37; }
.risk-medium { color: #9a6700; }
.risk-high { color: #cf222e; }
</style>
</head>
<body>
<h1>Due Diligence Report — {{.Document}}</h1>
<p>
Entity: <strong>{{.Entity.Name}}</strong> ({{.Entity.Status}})<br>
Overall score: <strong>{{.OverallScore}}</strong> —
<span class="risk-{{.RiskLevel}}">{{.RiskLevel}} risk</span><br>
Findings: {{.TotalFindings}} ({{.CriticalIssues}} critical)<br>
Generated at: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
</p>
<table>
<tr><th>Module</th><th>Score</th><th>Tier</th><th>Findings</th><th>Sources</th></tr>
{{range .Modules}}
<tr>
<td>{{.DisplayName}}</td>
<td>{{.Score}}</td>
<td class="risk-{{.RiskTier}}">{{.RiskTier}}</td>
<td>{{range .Findings}}{{.}}<br>{{end}}</td>
<td>{{range .SourcesConsulted}}{{.}}<br>{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

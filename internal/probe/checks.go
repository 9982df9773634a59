package probe

import (
	"context"
	"fmt"

	"veridian/diligence-api/internal/document"
	"veridian/diligence-api/internal/domain"
)

// ─── Cadastral (registry) ────────────────────────────────────────────────────

type cadastralProbe struct {
	src    sourcePair
	policy Policy
}

func (p *cadastralProbe) ID() string          { return "cadastral" }
func (p *cadastralProbe) DisplayName() string { return "Registry Status" }

func (p *cadastralProbe) Run(ctx context.Context, doc, kind string, env *Env) domain.ModuleResult {
	rec, consulted := p.src.lookup(ctx, doc)

	name := rec.Str("name")
	if name == "" {
		return finish(p.ID(), p.DisplayName(), p.policy.CadastralFail,
			[]string{"no data found", "verify registration status"}, consulted)
	}

	// Resolve the entity for the rest of the run.
	env.EntityName = name
	env.Entity = &domain.EntityInfo{
		Name:             name,
		Status:           rec.Str("status"),
		RegistrationDate: rec.Str("opened"),
		Address:          rec.Str("address"),
		MainActivity:     rec.Str("main_activity"),
	}

	return finish(p.ID(), p.DisplayName(), p.policy.CadastralOK,
		[]string{"valid registration", "regular status", "up to date"}, consulted)
}

// ─── Domestic sanctions ──────────────────────────────────────────────────────

type sanctionsProbe struct {
	src    sourcePair
	policy Policy
}

func (p *sanctionsProbe) ID() string          { return "sanctions" }
func (p *sanctionsProbe) DisplayName() string { return "Domestic Sanctions" }

func (p *sanctionsProbe) Run(ctx context.Context, doc, kind string, _ *Env) domain.ModuleResult {
	rec, consulted := p.src.lookup(ctx, doc)

	if count := rec.Int("count"); count > 0 {
		findings := []string{
			fmt.Sprintf("%d sanction(s) found on the restrictions list", count),
			"manual verification required",
		}
		if st := rec.Str("sanction_type"); st != "" {
			findings = append(findings, "sanction type: "+st)
		}
		return finish(p.ID(), p.DisplayName(), p.policy.SanctionsListed, findings, consulted)
	}
	return finish(p.ID(), p.DisplayName(), p.policy.SanctionsClear,
		[]string{"no sanctions found on the restrictions list"}, consulted)
}

// ─── Litigation ──────────────────────────────────────────────────────────────

type litigationProbe struct {
	src    sourcePair
	policy Policy
}

func (p *litigationProbe) ID() string          { return "litigation" }
func (p *litigationProbe) DisplayName() string { return "Litigation Records" }

func (p *litigationProbe) Run(ctx context.Context, doc, kind string, _ *Env) domain.ModuleResult {
	rec, consulted := p.src.lookup(ctx, doc)
	count := rec.Int("count")

	score := p.policy.LitigationBase - p.policy.LitigationPerCase*count
	if score < p.policy.LitigationFloor {
		score = p.policy.LitigationFloor
	}

	var findings []string
	if count == 0 {
		findings = []string{"no relevant court cases found"}
	} else {
		findings = []string{
			fmt.Sprintf("%d court case(s) found", count),
			"legal review recommended",
		}
	}
	return finish(p.ID(), p.DisplayName(), score, findings, consulted)
}

// ─── Tax standing (organizations only) ───────────────────────────────────────

type taxProbe struct {
	src    sourcePair
	policy Policy
}

func (p *taxProbe) ID() string          { return "tax" }
func (p *taxProbe) DisplayName() string { return "Tax Standing" }

func (p *taxProbe) Run(ctx context.Context, doc, kind string, _ *Env) domain.ModuleResult {
	if kind != domain.KindCNPJ {
		return notApplicable(p.ID(), p.DisplayName(), p.policy)
	}

	rec, consulted := p.src.lookup(ctx, doc)

	if outstanding := rec.Int("outstanding"); outstanding > 0 {
		return finish(p.ID(), p.DisplayName(), p.policy.TaxOutstanding,
			[]string{
				fmt.Sprintf("%d outstanding tax item(s)", outstanding),
				"detailed fiscal verification required",
			}, consulted)
	}

	findings := []string{"no outstanding tax items"}
	if st := rec.Str("status"); st != "" {
		findings = append(findings, "registry status: "+st)
	}
	return finish(p.ID(), p.DisplayName(), p.policy.TaxClear, findings, consulted)
}

// ─── Media / reputation ──────────────────────────────────────────────────────

type mediaProbe struct {
	src    sourcePair
	policy Policy
}

func (p *mediaProbe) ID() string          { return "media" }
func (p *mediaProbe) DisplayName() string { return "Media Reputation" }

func (p *mediaProbe) Run(ctx context.Context, doc, kind string, env *Env) domain.ModuleResult {
	// The lookup is keyed on the entity name resolved by the cadastral
	// probe. When resolution failed, the masked document keeps the query
	// deterministic without exposing the full identifier to a third party.
	key := env.EntityName
	if key == "" {
		key = document.Mask(doc, kind)
	}

	rec, consulted := p.src.lookup(ctx, key)
	headlines := rec.Strings("headlines")
	sentiment := classifySentiment(headlines)

	var score int
	var findings []string
	switch sentiment {
	case sentimentPositive:
		score = p.policy.MediaPositive
		findings = []string{"predominantly positive media coverage"}
	case sentimentNegative:
		score = p.policy.MediaNegative
		findings = []string{
			"negative media mentions found",
			"detailed review recommended",
		}
	default:
		score = p.policy.MediaNeutral
		findings = []string{"no significant media signal"}
	}
	if n := rec.Int("mention_count"); n > 0 {
		findings = append(findings, fmt.Sprintf("%d mention(s) analysed", n))
	}
	return finish(p.ID(), p.DisplayName(), score, findings, consulted)
}

// ─── Politically exposed person ──────────────────────────────────────────────

type pepProbe struct {
	src    sourcePair
	policy Policy
}

func (p *pepProbe) ID() string          { return "pep" }
func (p *pepProbe) DisplayName() string { return "Politically Exposed Person" }

func (p *pepProbe) Run(ctx context.Context, doc, kind string, _ *Env) domain.ModuleResult {
	rec, consulted := p.src.lookup(ctx, doc)

	if rec.Bool("listed") {
		return finish(p.ID(), p.DisplayName(), p.policy.PEPListed,
			[]string{
				"match on the exposed-persons register",
				"enhanced due diligence required",
			}, consulted)
	}
	return finish(p.ID(), p.DisplayName(), p.policy.PEPClear,
		[]string{"no match on the exposed-persons register"}, consulted)
}

// ─── International sanctions ─────────────────────────────────────────────────

type intlSanctionsProbe struct {
	src    sourcePair
	policy Policy
}

func (p *intlSanctionsProbe) ID() string          { return "international-sanctions" }
func (p *intlSanctionsProbe) DisplayName() string { return "International Sanctions" }

func (p *intlSanctionsProbe) Run(ctx context.Context, doc, kind string, env *Env) domain.ModuleResult {
	key := env.EntityName
	if key == "" {
		key = doc
	}
	rec, consulted := p.src.lookup(ctx, key)

	if rec.Bool("listed") {
		return finish(p.ID(), p.DisplayName(), p.policy.IntlListed,
			[]string{
				"entity appears on the consolidated sanctions list",
				"immediate escalation required",
			}, consulted)
	}
	return finish(p.ID(), p.DisplayName(), p.policy.IntlClear,
		[]string{"not present on the consolidated sanctions list"}, consulted)
}

// ─── Environmental (organizations only) ──────────────────────────────────────

type environmentalProbe struct {
	src    sourcePair
	policy Policy
}

func (p *environmentalProbe) ID() string          { return "environmental" }
func (p *environmentalProbe) DisplayName() string { return "Environmental Compliance" }

func (p *environmentalProbe) Run(ctx context.Context, doc, kind string, _ *Env) domain.ModuleResult {
	if kind != domain.KindCNPJ {
		return notApplicable(p.ID(), p.DisplayName(), p.policy)
	}

	rec, consulted := p.src.lookup(ctx, doc)
	if rec.Bool("violation") {
		return finish(p.ID(), p.DisplayName(), p.policy.EnvViolation,
			[]string{
				"environmental violation on record",
				"regularization required",
			}, consulted)
	}
	return finish(p.ID(), p.DisplayName(), p.policy.EnvClear,
		[]string{"no environmental violations identified"}, consulted)
}

// ─── Labor (organizations only) ──────────────────────────────────────────────

type laborProbe struct {
	src    sourcePair
	policy Policy
}

func (p *laborProbe) ID() string          { return "labor" }
func (p *laborProbe) DisplayName() string { return "Labor Compliance" }

func (p *laborProbe) Run(ctx context.Context, doc, kind string, _ *Env) domain.ModuleResult {
	if kind != domain.KindCNPJ {
		return notApplicable(p.ID(), p.DisplayName(), p.policy)
	}

	rec, consulted := p.src.lookup(ctx, doc)
	if rec.Bool("violation") {
		return finish(p.ID(), p.DisplayName(), p.policy.LaborViolation,
			[]string{
				"labor infraction on record",
				"working-conditions review required",
			}, consulted)
	}
	return finish(p.ID(), p.DisplayName(), p.policy.LaborClear,
		[]string{"regular labor standing"}, consulted)
}

// Package probe implements the fixed set of compliance probes that one
// analysis runs against a document.
//
// Architecture:
//
//	Each probe is independent, side-effect-free beyond its gateway lookups,
//	and always produces a ModuleResult — an unreachable upstream degrades to
//	a deterministic synthetic record, never to a missing module. The
//	aggregator runs probes in the display order defined here.
package probe

import (
	"context"

	"veridian/diligence-api/internal/domain"
	"veridian/diligence-api/internal/gateway"
)

// Env carries run-scoped facts shared between probes in one analysis.
// The cadastral probe resolves the entity; later probes (media,
// international sanctions) key their lookups on the resolved name.
// One Env belongs to exactly one run — never share across analyses.
type Env struct {
	EntityName string
	Entity     *domain.EntityInfo
}

// Probe is one compliance-category analysis unit.
type Probe interface {
	ID() string
	DisplayName() string
	Run(ctx context.Context, doc, kind string, env *Env) domain.ModuleResult
}

// Set is the fixed, ordered probe collection for one deployment.
type Set struct {
	probes []Probe
}

// NewSet builds the full probe set. sources backs the live lookups;
// fallback supplies the deterministic synthetic records used when every
// candidate upstream is unreachable (see gateway.NewSimulatedSources).
func NewSet(sources, fallback *gateway.Sources, policy Policy) *Set {
	s := &Set{}
	s.probes = []Probe{
		&cadastralProbe{sourcePair{sources.Registry, fallback.Registry}, policy},
		&sanctionsProbe{sourcePair{sources.Sanctions, fallback.Sanctions}, policy},
		&litigationProbe{sourcePair{sources.Litigation, fallback.Litigation}, policy},
		&taxProbe{sourcePair{sources.Tax, fallback.Tax}, policy},
		&mediaProbe{sourcePair{sources.News, fallback.News}, policy},
		&pepProbe{sourcePair{sources.PEP, fallback.PEP}, policy},
		&intlSanctionsProbe{sourcePair{sources.UNSanctions, fallback.UNSanctions}, policy},
		&environmentalProbe{sourcePair{sources.Environmental, fallback.Environmental}, policy},
		&laborProbe{sourcePair{sources.Labor, fallback.Labor}, policy},
	}
	for _, spec := range staticCatalog {
		s.probes = append(s.probes, &staticProbe{spec: spec, policy: policy})
	}
	return s
}

// Probes returns the probes in display order.
func (s *Set) Probes() []Probe { return s.probes }

// Len is the fixed module count of every AnalysisResult.
func (s *Set) Len() int { return len(s.probes) }

// ByID looks a probe up by its module id.
func (s *Set) ByID(id string) (Probe, bool) {
	for _, p := range s.probes {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// RunOne executes a single probe by id. An unknown id yields the canonical
// failed placeholder so callers always get a well-formed module.
func (s *Set) RunOne(ctx context.Context, id, doc, kind string, env *Env) domain.ModuleResult {
	p, ok := s.ByID(id)
	if !ok {
		return UnknownResult(id)
	}
	return p.Run(ctx, doc, kind, env)
}

// UnknownResult is the placeholder for a probe id the set does not contain.
func UnknownResult(id string) domain.ModuleResult {
	return domain.ModuleResult{
		ID:              id,
		DisplayName:     id,
		Score:           50,
		RiskTier:        domain.RiskMedium,
		Findings:        []string{"analysis unavailable"},
		CompletionState: domain.StateFailed,
	}
}

// ─── Shared probe plumbing ───────────────────────────────────────────────────

// sourcePair is a live source plus its synthetic fallback.
type sourcePair struct {
	live     gateway.DataSource
	fallback gateway.DataSource
}

// lookup consults the live source and degrades to the synthetic fallback,
// recording every source id it touched.
func (sp sourcePair) lookup(ctx context.Context, key string) (domain.Record, []string) {
	consulted := []string{sp.live.ID()}
	rec, err := sp.live.Lookup(ctx, key)
	if err == nil {
		return rec, consulted
	}
	consulted = append(consulted, sp.fallback.ID())
	rec, err = sp.fallback.Lookup(ctx, key)
	if err != nil {
		// Synthetic sources never fail; guard anyway.
		return domain.Record{}, consulted
	}
	return rec, consulted
}

// finish assembles a completed ModuleResult with the tier derived from the
// score.
func finish(id, name string, score int, findings, sources []string) domain.ModuleResult {
	return domain.ModuleResult{
		ID:               id,
		DisplayName:      name,
		Score:            score,
		RiskTier:         domain.TierForScore(score),
		Findings:         findings,
		SourcesConsulted: sources,
		CompletionState:  domain.StateCompleted,
	}
}

// notApplicable is the fixed result for organization-only probes run against
// an individual document.
func notApplicable(id, name string, policy Policy) domain.ModuleResult {
	return finish(id, name, policy.NotApplicable,
		[]string{"not applicable for individual"}, nil)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package analysis runs the probe set against one validated document and
// aggregates the per-module results into a final risk verdict.
//
// Execution is deliberately sequential: probes run one at a time in display
// order so progress is deterministic and later probes can reuse the entity
// resolved by the cadastral probe. Concurrency lives at the request level —
// every run owns its state, and concurrent runs for the same document are
// collapsed through singleflight.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"veridian/diligence-api/internal/document"
	"veridian/diligence-api/internal/domain"
	"veridian/diligence-api/internal/metrics"
	"veridian/diligence-api/internal/probe"
)

// ErrInvalidDocument is returned before any probe runs when the identifier
// fails validation. The only analysis error an end user ever sees.
var ErrInvalidDocument = errors.New("invalid document")

// Aggregate risk-level rule: more than 2 high-risk modules escalate the
// whole report; a single high or a pile-up of mediums is a medium verdict.
const (
	highModulesForHigh     = 2 // strictly more ⇒ high
	mediumModulesForMedium = 3 // strictly more ⇒ medium
)

// ProbeSet is the fixed ordered probe collection the aggregator runs.
// *probe.Set satisfies it; tests inject reduced sets.
type ProbeSet interface {
	Probes() []probe.Probe
	Len() int
}

// Service is the analysis aggregator.
type Service struct {
	set     ProbeSet
	metrics *metrics.Metrics
	group   singleflight.Group
}

// New creates an aggregator over the given probe set. metrics may be nil.
func New(set ProbeSet, m *metrics.Metrics) *Service {
	return &Service{set: set, metrics: m}
}

// ProbeCount is the fixed number of modules in every result.
func (s *Service) ProbeCount() int { return s.set.Len() }

// Analyze validates the raw document and runs the full probe set.
// Concurrent calls for the same document share one run; the shared result is
// immutable so this is safe. The run itself is detached from any single
// caller's lifetime — one caller hanging up must not fail the others — while
// each caller still honours its own ctx while waiting.
func (s *Service) Analyze(ctx context.Context, raw string) (*domain.AnalysisResult, error) {
	v := document.Validate(raw)
	if !v.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(v.Errors, "; "))
	}

	ch := s.group.DoChan(v.Document, func() (any, error) {
		return s.run(context.WithoutCancel(ctx), v.Document, v.Kind, nil)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*domain.AnalysisResult), nil
	}
}

// AnalyzeWithProgress validates the document, then streams one event as each
// probe starts and one as it completes, ending with an event that carries
// the final result. The channel closes when the run finishes or ctx is
// cancelled; a cancelled run emits no final result.
func (s *Service) AnalyzeWithProgress(ctx context.Context, raw string) (<-chan domain.ProgressEvent, error) {
	v := document.Validate(raw)
	if !v.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(v.Errors, "; "))
	}

	events := make(chan domain.ProgressEvent, 1)
	go func() {
		defer close(events)

		emit := func(ev domain.ProgressEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		result, err := s.run(ctx, v.Document, v.Kind, emit)
		if err != nil {
			slog.Info("analysis aborted", "document", document.Mask(v.Document, v.Kind), "reason", err)
			return
		}
		emit(domain.ProgressEvent{
			State:  domain.StateCompleted,
			Index:  s.set.Len(),
			Total:  s.set.Len(),
			Result: result,
		})
	}()
	return events, nil
}

// run executes the probe pipeline. emit may be nil; when it returns false
// the consumer is gone and the run stops without a result.
func (s *Service) run(ctx context.Context, doc, kind string, emit func(domain.ProgressEvent) bool) (*domain.AnalysisResult, error) {
	started := time.Now()
	env := &probe.Env{}
	total := s.set.Len()
	modules := make([]domain.ModuleResult, 0, total)

	for i, p := range s.set.Probes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if emit != nil {
			ok := emit(domain.ProgressEvent{
				ModuleID:    p.ID(),
				DisplayName: p.DisplayName(),
				State:       domain.StateRunning,
				Index:       i + 1,
				Total:       total,
			})
			if !ok {
				return nil, ctx.Err()
			}
		}

		mod := s.runProbe(ctx, p, doc, kind, env)
		modules = append(modules, mod)

		if emit != nil {
			ok := emit(domain.ProgressEvent{
				ModuleID:    p.ID(),
				DisplayName: p.DisplayName(),
				State:       mod.CompletionState,
				Index:       i + 1,
				Total:       total,
				Module:      &mod,
			})
			if !ok {
				return nil, ctx.Err()
			}
		}
	}

	result := assemble(doc, kind, modules, env)
	s.metrics.ObserveAnalysis(result.RiskLevel, time.Since(started).Seconds())
	return result, nil
}

// runProbe isolates one probe's failure: a panic substitutes the static
// fallback result and the batch carries on.
func (s *Service) runProbe(ctx context.Context, p probe.Probe, doc, kind string, env *probe.Env) (mod domain.ModuleResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("probe panicked, substituting fallback",
				"module", p.ID(), "panic", r)
			s.metrics.ObserveProbeFallback(p.ID())
			mod = fallbackResult(p)
		}
	}()
	return p.Run(ctx, doc, kind, env)
}

// fallbackResult is the static substitute for a probe that failed outright.
// Marked completed so a single broken probe never blocks the report.
func fallbackResult(p probe.Probe) domain.ModuleResult {
	return domain.ModuleResult{
		ID:              p.ID(),
		DisplayName:     p.DisplayName(),
		Score:           50,
		RiskTier:        domain.RiskMedium,
		Findings:        []string{"analysis unavailable"},
		CompletionState: domain.StateCompleted,
	}
}

// assemble combines module results into the final AnalysisResult.
func assemble(doc, kind string, modules []domain.ModuleResult, env *probe.Env) *domain.AnalysisResult {
	var sum, high, medium, findings, critical int
	for _, m := range modules {
		sum += m.Score
		findings += len(m.Findings)
		switch m.RiskTier {
		case domain.RiskHigh:
			high++
			critical += len(m.Findings)
		case domain.RiskMedium:
			medium++
		}
	}

	overall := 0
	if len(modules) > 0 {
		overall = int(math.Round(float64(sum) / float64(len(modules))))
	}

	level := domain.RiskLow
	switch {
	case high > highModulesForHigh:
		level = domain.RiskHigh
	case high >= 1 || medium > mediumModulesForMedium:
		level = domain.RiskMedium
	}

	entity := env.Entity
	if entity == nil {
		entity = placeholderEntity(kind)
	}

	return &domain.AnalysisResult{
		ID:             uuid.NewString(),
		Document:       doc,
		Kind:           kind,
		OverallScore:   overall,
		RiskLevel:      level,
		TotalFindings:  findings,
		CriticalIssues: critical,
		Modules:        modules,
		EntityInfo:     *entity,
		GeneratedAt:    time.Now().UTC(),
	}
}

// placeholderEntity is the deterministic stand-in when the registry probe
// could not resolve the subject.
func placeholderEntity(kind string) *domain.EntityInfo {
	name := "UNIDENTIFIED ORGANIZATION"
	if kind == domain.KindCPF {
		name = "UNIDENTIFIED INDIVIDUAL"
	}
	return &domain.EntityInfo{
		Name:   name,
		Status: "UNKNOWN",
	}
}

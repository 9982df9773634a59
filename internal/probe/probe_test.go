package probe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridian/diligence-api/internal/domain"
	"veridian/diligence-api/internal/gateway"
	"veridian/diligence-api/internal/probe"
)

const (
	testCNPJ = "33000167000101"
	testCPF  = "11144477735"
)

// stubSource returns a fixed record (or error) for every lookup.
type stubSource struct {
	id  string
	rec domain.Record
	err error
}

func (s *stubSource) ID() string { return s.id }
func (s *stubSource) Lookup(context.Context, string) (domain.Record, error) {
	return s.rec, s.err
}

func fixed(id string, rec domain.Record) gateway.DataSource {
	return &stubSource{id: id, rec: rec}
}

func failing(id string) gateway.DataSource {
	return &stubSource{id: id, err: errors.New("boom")}
}

// stubSet builds a probe set where every live source answers with the given
// records; nil entries fail so the synthetic fallback kicks in.
func stubSources(recs map[string]domain.Record) *gateway.Sources {
	pick := func(key string) gateway.DataSource {
		if rec, ok := recs[key]; ok {
			return fixed(key, rec)
		}
		return failing(key)
	}
	return &gateway.Sources{
		Registry:      pick("registry"),
		Sanctions:     pick("sanctions"),
		Litigation:    pick("litigation"),
		Tax:           pick("tax"),
		News:          pick("news"),
		UNSanctions:   pick("un-sanctions"),
		PEP:           pick("pep"),
		Environmental: pick("environmental"),
		Labor:         pick("labor"),
	}
}

func newSet(recs map[string]domain.Record) *probe.Set {
	return probe.NewSet(stubSources(recs), gateway.NewSimulatedSources(), probe.DefaultPolicy())
}

func runOne(t *testing.T, set *probe.Set, id, doc, kind string) domain.ModuleResult {
	t.Helper()
	env := &probe.Env{}
	// Resolve the entity first, as the aggregator would.
	_ = set.RunOne(context.Background(), "cadastral", doc, kind, env)
	return set.RunOne(context.Background(), id, doc, kind, env)
}

// ─── Set shape ───────────────────────────────────────────────────────────────

func TestSet_FixedSizeAndOrder(t *testing.T) {
	set := newSet(nil)
	require.Equal(t, 17, set.Len())

	probes := set.Probes()
	assert.Equal(t, "cadastral", probes[0].ID())
	assert.Equal(t, "sanctions", probes[1].ID())
	assert.Equal(t, "data-protection", probes[len(probes)-1].ID())
}

func TestRunOne_UnknownID(t *testing.T) {
	set := newSet(nil)
	res := set.RunOne(context.Background(), "nope", testCNPJ, domain.KindCNPJ, &probe.Env{})

	assert.Equal(t, 50, res.Score)
	assert.Equal(t, domain.RiskMedium, res.RiskTier)
	assert.Equal(t, domain.StateFailed, res.CompletionState)
	assert.Equal(t, []string{"analysis unavailable"}, res.Findings)
}

// ─── Cadastral ───────────────────────────────────────────────────────────────

func TestCadastral_SuccessResolvesEntity(t *testing.T) {
	set := newSet(map[string]domain.Record{
		"registry": {
			"name":          "BANCO CENTRAL SA",
			"status":        "ATIVA",
			"opened":        "1964-12-31",
			"address":       "SBS Quadra 3, Brasília, DF",
			"main_activity": "banking",
		},
	})

	env := &probe.Env{}
	res := set.RunOne(context.Background(), "cadastral", testCNPJ, domain.KindCNPJ, env)

	assert.Equal(t, 95, res.Score)
	assert.Equal(t, domain.RiskLow, res.RiskTier)
	assert.Equal(t, []string{"valid registration", "regular status", "up to date"}, res.Findings)
	require.NotNil(t, env.Entity)
	assert.Equal(t, "BANCO CENTRAL SA", env.EntityName)
	assert.Equal(t, "ATIVA", env.Entity.Status)
}

func TestCadastral_NoData(t *testing.T) {
	// Live source fails and the fallback yields an empty record.
	set := probe.NewSet(
		stubSources(nil),
		stubSources(map[string]domain.Record{"registry": {}}),
		probe.DefaultPolicy(),
	)

	env := &probe.Env{}
	res := set.RunOne(context.Background(), "cadastral", testCNPJ, domain.KindCNPJ, env)

	assert.Equal(t, 50, res.Score)
	assert.Equal(t, domain.RiskHigh, res.RiskTier)
	assert.Contains(t, res.Findings, "no data found")
	assert.Nil(t, env.Entity)
	// Both the live and the fallback source ids must be recorded.
	assert.Len(t, res.SourcesConsulted, 2)
}

// ─── Sanctions ───────────────────────────────────────────────────────────────

func TestSanctions_ListedAndClear(t *testing.T) {
	listed := newSet(map[string]domain.Record{
		"sanctions": {"count": 2, "sanction_type": "suspension"},
	})
	res := runOne(t, listed, "sanctions", testCNPJ, domain.KindCNPJ)
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, domain.RiskHigh, res.RiskTier)
	assert.Contains(t, res.Findings, "2 sanction(s) found on the restrictions list")

	clear := newSet(map[string]domain.Record{"sanctions": {"count": 0}})
	res = runOne(t, clear, "sanctions", testCNPJ, domain.KindCNPJ)
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, domain.RiskLow, res.RiskTier)
}

// ─── Litigation ──────────────────────────────────────────────────────────────

func TestLitigation_ScoreFormula(t *testing.T) {
	tests := []struct {
		count int
		score int
	}{
		{0, 90},
		{4, 70},
		{8, 50},
		{16, 10},
		{50, 10}, // floor
	}
	for _, tt := range tests {
		set := newSet(map[string]domain.Record{"litigation": {"count": tt.count}})
		res := runOne(t, set, "litigation", testCNPJ, domain.KindCNPJ)
		assert.Equal(t, tt.score, res.Score, "count=%d", tt.count)
	}
}

// ─── Tax ─────────────────────────────────────────────────────────────────────

func TestTax_NotApplicableForIndividuals(t *testing.T) {
	set := newSet(map[string]domain.Record{"tax": {"outstanding": 5}})
	res := runOne(t, set, "tax", testCPF, domain.KindCPF)

	assert.Equal(t, 85, res.Score)
	assert.Equal(t, []string{"not applicable for individual"}, res.Findings)
}

func TestTax_Outstanding(t *testing.T) {
	set := newSet(map[string]domain.Record{"tax": {"outstanding": 3, "status": "ATIVA"}})
	res := runOne(t, set, "tax", testCNPJ, domain.KindCNPJ)

	assert.Equal(t, 55, res.Score)
	assert.Equal(t, domain.RiskMedium, res.RiskTier)
}

func TestTax_Clear(t *testing.T) {
	set := newSet(map[string]domain.Record{"tax": {"outstanding": 0, "status": "ATIVA"}})
	res := runOne(t, set, "tax", testCNPJ, domain.KindCNPJ)
	assert.Equal(t, 85, res.Score)
}

// ─── Media sentiment ─────────────────────────────────────────────────────────

func TestMedia_SentimentScores(t *testing.T) {
	tests := []struct {
		name      string
		headlines []string
		score     int
	}{
		{"positive", []string{"company wins sector award"}, 85},
		{"negative", []string{"executives under fraud investigation"}, 45},
		{"neutral", []string{"quarterly results released"}, 70},
		{"mixed is neutral", []string{"award-winning firm faces lawsuit"}, 70},
		{"no headlines is neutral", nil, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newSet(map[string]domain.Record{
				"registry": {"name": "ACME SA", "status": "ATIVA"},
				"news":     {"headlines": tt.headlines, "mention_count": len(tt.headlines)},
			})
			res := runOne(t, set, "media", testCNPJ, domain.KindCNPJ)
			assert.Equal(t, tt.score, res.Score)
		})
	}
}

// ─── Boolean registries ──────────────────────────────────────────────────────

func TestPEP(t *testing.T) {
	listed := newSet(map[string]domain.Record{"pep": {"listed": true}})
	assert.Equal(t, 60, runOne(t, listed, "pep", testCPF, domain.KindCPF).Score)

	clear := newSet(map[string]domain.Record{"pep": {"listed": false}})
	assert.Equal(t, 90, runOne(t, clear, "pep", testCPF, domain.KindCPF).Score)
}

func TestInternationalSanctions(t *testing.T) {
	listed := newSet(map[string]domain.Record{"un-sanctions": {"listed": true}})
	res := runOne(t, listed, "international-sanctions", testCNPJ, domain.KindCNPJ)
	assert.Equal(t, 30, res.Score)
	assert.Equal(t, domain.RiskHigh, res.RiskTier)

	clear := newSet(map[string]domain.Record{"un-sanctions": {"listed": false}})
	assert.Equal(t, 85, runOne(t, clear, "international-sanctions", testCNPJ, domain.KindCNPJ).Score)
}

func TestEnvironmentalAndLabor(t *testing.T) {
	set := newSet(map[string]domain.Record{
		"environmental": {"violation": true},
		"labor":         {"violation": true},
	})
	assert.Equal(t, 40, runOne(t, set, "environmental", testCNPJ, domain.KindCNPJ).Score)
	assert.Equal(t, 25, runOne(t, set, "labor", testCNPJ, domain.KindCNPJ).Score)

	// Organization-only: individuals get the fixed not-applicable score.
	assert.Equal(t, 85, runOne(t, set, "environmental", testCPF, domain.KindCPF).Score)
	assert.Equal(t, 85, runOne(t, set, "labor", testCPF, domain.KindCPF).Score)
}

// ─── Static probes ───────────────────────────────────────────────────────────

func TestStaticProbes_DeterministicAndBounded(t *testing.T) {
	set := newSet(nil)

	for _, id := range []string{"corporate-structure", "aml", "data-protection"} {
		first := runOne(t, set, id, testCNPJ, domain.KindCNPJ)
		second := runOne(t, set, id, testCNPJ, domain.KindCNPJ)
		assert.Equal(t, first.Score, second.Score, "probe %s must be deterministic", id)
		assert.GreaterOrEqual(t, first.Score, 0)
		assert.LessOrEqual(t, first.Score, 100)
		assert.Equal(t, domain.StateCompleted, first.CompletionState)
		assert.NotEmpty(t, first.Findings)
		assert.NotEmpty(t, first.SourcesConsulted)
	}
}

func TestStaticProbes_VariationDependsOnIdentifier(t *testing.T) {
	set := newSet(nil)
	scores := map[int]bool{}
	for _, doc := range []string{"11144477735", "33000167000101", "96644771000102", "52998224725"} {
		res := set.RunOne(context.Background(), "accounting", doc, domain.KindCNPJ, &probe.Env{})
		scores[res.Score] = true
	}
	assert.Greater(t, len(scores), 1, "different leading digits should vary the score")
}

package store_test

import (
	"testing"
	"time"

	"veridian/diligence-api/internal/domain"
	"veridian/diligence-api/internal/store"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

func newResult(id, document string, at time.Time) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:           id,
		Document:     document,
		Kind:         domain.KindCNPJ,
		OverallScore: 80,
		RiskLevel:    domain.RiskLow,
		GeneratedAt:  at,
	}
}

var now = time.Now().UTC()

// ─── SaveAnalysis ─────────────────────────────────────────────────────────────

func TestSave_And_GetByID(t *testing.T) {
	s := store.New()
	if err := s.SaveAnalysis(newResult("an-001", "33000167000101", now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := s.GetAnalysis("an-001")
	if !ok {
		t.Fatal("expected to find an-001")
	}
	if got.Document != "33000167000101" {
		t.Errorf("expected document 33000167000101, got %s", got.Document)
	}
}

func TestSave_DuplicateID_ReturnsError(t *testing.T) {
	s := store.New()
	_ = s.SaveAnalysis(newResult("dup-001", "33000167000101", now))
	if err := s.SaveAnalysis(newResult("dup-001", "33000167000101", now)); err != store.ErrDuplicateAnalysis {
		t.Errorf("expected ErrDuplicateAnalysis, got %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	s := store.New()
	if _, ok := s.GetAnalysis("nope"); ok {
		t.Error("expected miss for unknown id")
	}
}

// ─── Document index ───────────────────────────────────────────────────────────

func TestListByDocument_NewestFirst(t *testing.T) {
	s := store.New()
	_ = s.SaveAnalysis(newResult("old", "33000167000101", now.Add(-2*time.Hour)))
	_ = s.SaveAnalysis(newResult("new", "33000167000101", now))
	_ = s.SaveAnalysis(newResult("other", "11144477735", now))

	list := s.ListByDocument("33000167000101")
	if len(list) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(list))
	}
	if list[0].ID != "new" || list[1].ID != "old" {
		t.Errorf("expected newest first, got %s then %s", list[0].ID, list[1].ID)
	}
}

func TestCount(t *testing.T) {
	s := store.New()
	_ = s.SaveAnalysis(newResult("a", "33000167000101", now))
	_ = s.SaveAnalysis(newResult("b", "11144477735", now))
	if got := s.Count(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

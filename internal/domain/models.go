// Package domain contains all core types used across the application.
// Keeping domain types in one place makes the compliance scoring rules easy
// to reason about.
package domain

import "time"

// ─── Constants ───────────────────────────────────────────────────────────────

// Document kinds supported by the analysis pipeline.
const (
	KindCPF     = "cpf"     // individual registration, 11 digits
	KindCNPJ    = "cnpj"    // corporate registration, 14 digits
	KindUnknown = "unknown" // anything else; never analysable
)

// Risk tier labels that correspond to score bands.
const (
	RiskLow    = "low"    // score > 75
	RiskMedium = "medium" // 51-75
	RiskHigh   = "high"   // 0-50
)

// Completion states a probe moves through during one analysis run.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// ─── Scoring thresholds ──────────────────────────────────────────────────────

// Tier boundaries applied uniformly to every module score.
const (
	ThresholdLow    = 75 // score > 75  → low
	ThresholdMedium = 50 // 51-75       → medium; ≤ 50 → high
)

// TierForScore maps a 0-100 module score to its risk tier.
func TierForScore(score int) string {
	switch {
	case score > ThresholdLow:
		return RiskLow
	case score > ThresholdMedium:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// ─── Source lookups ──────────────────────────────────────────────────────────

// Record is one normalized upstream payload. Upstream schemas differ
// field-by-field; the gateway's normalization layer is the only place that
// knowledge lives, so everything downstream sees a flat key/value record.
type Record map[string]any

// SourceResponse is the outcome of a single external lookup.
// Created by a source gateway call, never mutated, consumed immediately by
// the owning probe.
type SourceResponse struct {
	OK           bool      `json:"ok"`
	Payload      Record    `json:"payload,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SourceID     string    `json:"source_id"`
	ObservedAt   time.Time `json:"observed_at"`
}

// ─── Analysis results ────────────────────────────────────────────────────────

// ModuleResult is the outcome of one compliance probe.
// Immutable after creation; owned by the enclosing AnalysisResult.
type ModuleResult struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"display_name"`
	Score            int      `json:"score"` // 0-100
	RiskTier         string   `json:"risk_tier"`
	Findings         []string `json:"findings"`
	SourcesConsulted []string `json:"sources_consulted"`
	CompletionState  string   `json:"completion_state"`
}

// EntityInfo holds descriptive facts about the analysed subject, resolved
// from the registry probe or a deterministic fallback.
type EntityInfo struct {
	Name             string `json:"name"`
	Status           string `json:"status"`
	RegistrationDate string `json:"registration_date"`
	Address          string `json:"address"`
	MainActivity     string `json:"main_activity"`
}

// AnalysisResult is the canonical record produced by one completed analysis.
// This is the unit handed to report rendering and to API consumers.
type AnalysisResult struct {
	ID             string         `json:"id"`
	Document       string         `json:"document"` // clean digits; mask before display
	Kind           string         `json:"kind"`
	OverallScore   int            `json:"overall_score"`
	RiskLevel      string         `json:"risk_level"`
	TotalFindings  int            `json:"total_findings"`
	CriticalIssues int            `json:"critical_issues"`
	Modules        []ModuleResult `json:"modules"`
	EntityInfo     EntityInfo     `json:"entity_info"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// ─── Progress streaming ──────────────────────────────────────────────────────

// ProgressEvent is one snapshot emitted while an analysis runs. Each probe
// produces a "running" event when it starts and a "completed" event carrying
// its ModuleResult; the final event carries the assembled AnalysisResult.
type ProgressEvent struct {
	ModuleID    string          `json:"module_id,omitempty"`
	DisplayName string          `json:"display_name,omitempty"`
	State       string          `json:"state"`
	Index       int             `json:"index"` // 1-based position in the probe set
	Total       int             `json:"total"`
	Module      *ModuleResult   `json:"module,omitempty"`
	Result      *AnalysisResult `json:"result,omitempty"` // set on the final event only
}

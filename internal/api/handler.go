package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veridian/diligence-api/internal/analysis"
	"veridian/diligence-api/internal/auth"
	"veridian/diligence-api/internal/cache"
	"veridian/diligence-api/internal/document"
	"veridian/diligence-api/internal/report"
	"veridian/diligence-api/internal/store"
)

// Handler holds the service dependencies shared by all route handlers.
type Handler struct {
	analyzer *analysis.Service
	store    *store.Store
	cache    cache.Cache
	users    *auth.UserStore
	tokens   *auth.TokenService
}

// NewHandler wires the HTTP layer to its collaborators.
func NewHandler(analyzer *analysis.Service, st *store.Store, c cache.Cache, users *auth.UserStore, tokens *auth.TokenService) *Handler {
	if c == nil {
		c = cache.Noop{}
	}
	return &Handler{analyzer: analyzer, store: st, cache: c, users: users, tokens: tokens}
}

// decode binds a JSON request body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ─── Health ──────────────────────────────────────────────────────────────────

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	ok(w, map[string]any{
		"status":   "healthy",
		"analyses": h.store.Count(),
	})
}

// ─── Auth ────────────────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
	Role      string `json:"role"`
	Username  string `json:"username"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	u, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		unauthorized(w, "invalid username or password")
		return
	}

	token, err := h.tokens.Generate(u)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		internalError(w)
		return
	}
	ok(w, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
		Role:      u.Role,
		Username:  u.Username,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, found := auth.ClaimsFrom(r.Context())
	if !found {
		unauthorized(w, "missing authentication")
		return
	}
	u, exists := h.users.Get(claims.Subject)
	if !exists {
		// Token outlived the account.
		unauthorized(w, "account no longer exists")
		return
	}
	ok(w, u)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, _ *http.Request) {
	ok(w, h.users.List())
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	u, err := h.users.Create(req.Username, req.Password, req.Role)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		badRequest(w, "USER_EXISTS", "username is already taken")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		badRequest(w, "INVALID_USER", "username and password are required")
		return
	case err != nil:
		slog.Error("user creation failed", "error", err)
		internalError(w)
		return
	}
	created(w, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if claims, found := auth.ClaimsFrom(r.Context()); found && claims.Subject == id {
		badRequest(w, "SELF_DELETE", "cannot delete your own account")
		return
	}
	if err := h.users.Delete(id); err != nil {
		notFound(w, "user not found")
		return
	}
	noContent(w)
}

// ─── Document validation ─────────────────────────────────────────────────────

type documentRequest struct {
	Document string `json:"document"`
}

type validateResponse struct {
	document.Validation
	Formatted string `json:"formatted,omitempty"`
	Masked    string `json:"masked,omitempty"`
}

// ValidateDocument checks a CPF/CNPJ without running any analysis. Public:
// no external lookup happens here, only local arithmetic.
func (h *Handler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	v := document.Validate(req.Document)
	resp := validateResponse{Validation: v}
	if v.Valid {
		resp.Formatted = document.Format(v.Document, v.Kind)
		resp.Masked = document.Mask(v.Document, v.Kind)
	}
	ok(w, resp)
}

// ─── Analyses ────────────────────────────────────────────────────────────────

// CreateAnalysis runs the full probe set for a document and stores the
// result. A fresh run answers 201; a cache hit answers 200 with the recent
// result instead of re-querying upstreams.
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	v := document.Validate(req.Document)
	if cached, hit := h.cache.Get(r.Context(), v.Document); hit {
		ok(w, cached)
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), req.Document)
	if errors.Is(err, analysis.ErrInvalidDocument) {
		badRequest(w, "INVALID_DOCUMENT", err.Error())
		return
	}
	if err != nil {
		slog.Error("analysis failed", "document", document.Mask(v.Document, v.Kind), "error", err)
		internalError(w)
		return
	}

	if err := h.store.SaveAnalysis(res); err != nil && !errors.Is(err, store.ErrDuplicateAnalysis) {
		slog.Error("saving analysis failed", "analysis_id", res.ID, "error", err)
	}
	h.cache.Set(r.Context(), res.Document, res)
	created(w, res)
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	res, found := h.store.GetAnalysis(chi.URLParam(r, "id"))
	if !found {
		notFound(w, "analysis not found")
		return
	}
	ok(w, res)
}

// historyEntry is the compact listing shape for past analyses. The raw
// identifier is replaced with its masked form.
type historyEntry struct {
	ID             string `json:"id"`
	Document       string `json:"document"` // masked
	Kind           string `json:"kind"`
	OverallScore   int    `json:"overall_score"`
	RiskLevel      string `json:"risk_level"`
	TotalFindings  int    `json:"total_findings"`
	CriticalIssues int    `json:"critical_issues"`
	GeneratedAt    string `json:"generated_at"`
}

// ListAnalysesByDocument returns the analysis history for one document,
// newest first.
func (h *Handler) ListAnalysesByDocument(w http.ResponseWriter, r *http.Request) {
	kind, digits := document.Classify(chi.URLParam(r, "document"))
	if kind == "unknown" {
		badRequest(w, "INVALID_DOCUMENT", document.ErrMsgLength)
		return
	}

	all := h.store.ListByDocument(digits)
	entries := make([]historyEntry, 0, len(all))
	for _, res := range all {
		entries = append(entries, historyEntry{
			ID:             res.ID,
			Document:       document.Mask(res.Document, res.Kind),
			Kind:           res.Kind,
			OverallScore:   res.OverallScore,
			RiskLevel:      res.RiskLevel,
			TotalFindings:  res.TotalFindings,
			CriticalIssues: res.CriticalIssues,
			GeneratedAt:    res.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	ok(w, map[string]any{
		"document": document.Mask(digits, kind),
		"count":    len(entries),
		"analyses": entries,
	})
}

// GetReport renders a stored analysis as JSON (default) or HTML. The body
// is the report itself, not the envelope.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	res, found := h.store.GetAnalysis(chi.URLParam(r, "id"))
	if !found {
		notFound(w, "analysis not found")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}
	doc, err := report.Render(res, format)
	if err != nil {
		slog.Error("report rendering failed", "analysis_id", res.ID, "error", err)
		internalError(w)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// StreamAnalysis runs an analysis while streaming progress as NDJSON: one
// event per line as each probe starts and completes, then a final line with
// the full result. A disconnected client cancels the run.
func (h *Handler) StreamAnalysis(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	events, err := h.analyzer.AnalyzeWithProgress(r.Context(), req.Document)
	if errors.Is(err, analysis.ErrInvalidDocument) {
		badRequest(w, "INVALID_DOCUMENT", err.Error())
		return
	}
	if err != nil {
		internalError(w)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			// Client went away; r.Context() cancellation stops the run.
			return
		}
		if canFlush {
			flusher.Flush()
		}
		if ev.Result != nil {
			if err := h.store.SaveAnalysis(ev.Result); err != nil && !errors.Is(err, store.ErrDuplicateAnalysis) {
				slog.Error("saving streamed analysis failed", "analysis_id", ev.Result.ID, "error", err)
			}
			h.cache.Set(r.Context(), ev.Result.Document, ev.Result)
		}
	}
}

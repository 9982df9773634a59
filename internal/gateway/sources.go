package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"veridian/diligence-api/internal/domain"
)

// Endpoints holds the ordered candidate URL templates per data domain.
// Each template receives the (escaped) identifier once. Candidates are tried
// in order; the first success wins. Tests point these at httptest servers.
type Endpoints struct {
	Registry      []string
	Sanctions     []string
	Litigation    []string
	Tax           []string
	News          []string
	UNSanctions   []string
	PEP           []string
	Environmental []string
	Labor         []string
}

// DefaultEndpoints returns the production upstream catalog.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Registry: []string{
			"https://minhareceita.org/%s",
			"https://open.cnpja.com/office/%s",
		},
		Sanctions: []string{
			"https://www.portaltransparencia.gov.br/api-de-dados/ceis?cnpjSancionado=%s",
			"https://www.portaltransparencia.gov.br/api-de-dados/cnep?cnpjSancionado=%s",
		},
		Litigation: []string{
			"https://www.jusbrasil.com.br/api/v2/search?q=%s&type=processo",
		},
		Tax: []string{
			"https://minhareceita.org/%s",
		},
		News: []string{
			"https://newsapi.org/v2/everything?q=%s&language=pt&sortBy=relevancy",
			"https://news.google.com/rss/search?q=%s&hl=pt-BR",
		},
		UNSanctions: []string{
			"https://scsanctions.un.org/resources/xml/en/consolidated.xml",
		},
		PEP: []string{
			"https://www.portaltransparencia.gov.br/api-de-dados/peps?cpf=%s",
		},
		Environmental: []string{
			"https://servicos.ibama.gov.br/ctf/publico/areasembargadas/consulta?cnpj=%s",
		},
		Labor: []string{
			"https://sit.trabalho.gov.br/radar/consulta?cnpj=%s",
		},
	}
}

// Sources bundles one DataSource per data domain, all backed by the same
// gateway client.
type Sources struct {
	Registry      DataSource
	Sanctions     DataSource
	Litigation    DataSource
	Tax           DataSource
	News          DataSource
	UNSanctions   DataSource
	PEP           DataSource
	Environmental DataSource
	Labor         DataSource
}

// NewHTTPSources wires the full HTTP-backed source set.
func NewHTTPSources(client *Client, eps Endpoints) *Sources {
	return &Sources{
		Registry:      &httpSource{"registry", client, eps.Registry, normalizeRegistry},
		Sanctions:     &httpSource{"sanctions", client, eps.Sanctions, normalizeSanctions},
		Litigation:    &httpSource{"litigation", client, eps.Litigation, normalizeLitigation},
		Tax:           &httpSource{"tax", client, eps.Tax, normalizeTax},
		News:          &httpSource{"news", client, eps.News, normalizeNews},
		UNSanctions:   &httpSource{"un-sanctions", client, eps.UNSanctions, normalizeUNSanctions},
		PEP:           &httpSource{"pep", client, eps.PEP, normalizePEP},
		Environmental: &httpSource{"environmental", client, eps.Environmental, normalizeEnvironmental},
		Labor:         &httpSource{"labor", client, eps.Labor, normalizeLabor},
	}
}

// httpSource tries an ordered candidate list for the same fact and
// normalizes the winning payload. The identifier argument is whatever the
// owning probe keys the lookup on — the document for registry-style sources,
// the resolved entity name for media and international-sanctions ones.
type httpSource struct {
	id        string
	client    *Client
	templates []string
	normalize func(identifier string, payload domain.Record) domain.Record
}

func (s *httpSource) ID() string { return s.id }

func (s *httpSource) Lookup(ctx context.Context, identifier string) (domain.Record, error) {
	for _, tmpl := range s.templates {
		u := tmpl
		if strings.Contains(tmpl, "%s") {
			u = fmt.Sprintf(tmpl, url.QueryEscape(identifier))
		}
		resp := s.client.Fetch(ctx, u)
		if resp.OK {
			return s.normalize(identifier, resp.Payload), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", s.id, ErrUnavailable)
}

// ─── Per-domain normalization ────────────────────────────────────────────────
//
// Each function flattens one upstream's schema into the canonical keys the
// probes consume. Schema knowledge must not leak past this file.

// normalizeRegistry canonical keys: name, status, opened, address,
// main_activity.
func normalizeRegistry(_ string, p domain.Record) domain.Record {
	// minhareceita shape
	if name := p.Str("razao_social"); name != "" {
		addr := strings.TrimSpace(strings.Join(nonEmpty(
			p.Str("logradouro"), p.Str("municipio"), p.Str("uf")), ", "))
		status := p.Str("descricao_situacao_cadastral")
		if status == "" {
			status = p.Str("situacao")
		}
		return domain.Record{
			"name":          name,
			"status":        strings.ToUpper(status),
			"opened":        p.Str("data_inicio_atividade"),
			"address":       addr,
			"main_activity": p.Str("cnae_fiscal_descricao"),
		}
	}

	// cnpja shape: nested objects
	rec := domain.Record{}
	if company, ok := p["company"].(map[string]any); ok {
		rec["name"] = domain.Record(company).Str("name")
	}
	if st, ok := p["status"].(map[string]any); ok {
		rec["status"] = strings.ToUpper(domain.Record(st).Str("text"))
	}
	rec["opened"] = p.Str("founded")
	if act, ok := p["mainActivity"].(map[string]any); ok {
		rec["main_activity"] = domain.Record(act).Str("text")
	}
	if addr, ok := p["address"].(map[string]any); ok {
		a := domain.Record(addr)
		rec["address"] = strings.TrimSpace(strings.Join(nonEmpty(
			a.Str("street"), a.Str("city"), a.Str("state")), ", "))
	}
	return rec
}

// normalizeSanctions canonical keys: count, sanction_type.
func normalizeSanctions(_ string, p domain.Record) domain.Record {
	rec := domain.Record{"count": p.Int("count")}
	if items, ok := p["items"].([]any); ok && len(items) > 0 {
		if first, ok := items[0].(map[string]any); ok {
			rec["sanction_type"] = domain.Record(first).Str("tipoSancao")
		}
	}
	return rec
}

// normalizeLitigation canonical key: count.
func normalizeLitigation(_ string, p domain.Record) domain.Record {
	count := p.Int("count")
	if results, ok := p["results"].([]any); ok {
		count = len(results)
	}
	return domain.Record{"count": count}
}

// normalizeTax canonical keys: status, outstanding.
func normalizeTax(_ string, p domain.Record) domain.Record {
	status := p.Str("descricao_situacao_cadastral")
	if status == "" {
		status = p.Str("situacao")
	}
	outstanding := 0
	if debts, ok := p["debitos"].([]any); ok {
		outstanding = len(debts)
	}
	return domain.Record{
		"status":      strings.ToUpper(status),
		"outstanding": outstanding,
	}
}

// normalizeNews canonical keys: headlines, mention_count.
func normalizeNews(_ string, p domain.Record) domain.Record {
	if articles, ok := p["articles"].([]any); ok {
		headlines := make([]string, 0, len(articles))
		for _, a := range articles {
			if m, ok := a.(map[string]any); ok {
				if title := domain.Record(m).Str("title"); title != "" {
					headlines = append(headlines, title)
				}
			}
		}
		return domain.Record{"headlines": headlines, "mention_count": len(headlines)}
	}
	// RSS fallback: only a coarse item count is available.
	return domain.Record{"headlines": []string{}, "mention_count": p.Int("item_count")}
}

// normalizeUNSanctions canonical key: listed. The consolidated list is one
// big XML document; a case-insensitive name scan is the coarse check the
// upstream supports without authentication.
func normalizeUNSanctions(name string, p domain.Record) domain.Record {
	raw := strings.ToUpper(p.Str("raw"))
	listed := name != "" && strings.Contains(raw, strings.ToUpper(name))
	return domain.Record{"listed": listed}
}

// normalizePEP canonical key: listed.
func normalizePEP(_ string, p domain.Record) domain.Record {
	return domain.Record{"listed": p.Int("count") > 0}
}

// normalizeEnvironmental canonical key: violation.
func normalizeEnvironmental(_ string, p domain.Record) domain.Record {
	violation := p.Int("count") > 0
	if raw := strings.ToLower(p.Str("raw")); strings.Contains(raw, "embargo") {
		violation = true
	}
	if infr, ok := p["infracoes"].([]any); ok && len(infr) > 0 {
		violation = true
	}
	return domain.Record{"violation": violation}
}

// normalizeLabor canonical key: violation.
func normalizeLabor(_ string, p domain.Record) domain.Record {
	violation := false
	if aut, ok := p["autuacoes"].([]any); ok && len(aut) > 0 {
		violation = true
	}
	if strings.EqualFold(p.Str("situacao"), "irregular") {
		violation = true
	}
	return domain.Record{"violation": violation}
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

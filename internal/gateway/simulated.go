package gateway

import (
	"context"
	"fmt"
	"hash/fnv"

	"veridian/diligence-api/internal/domain"
)

// SimulatedSource is a deterministic stand-in for an upstream that is not
// wired in the current environment. The record is a pure function of the
// identifier so repeated analyses of the same document always agree.
type SimulatedSource struct {
	id string
	fn func(identifier string) domain.Record
}

// NewSimulatedSource builds a simulated source with the given id and
// derivation function.
func NewSimulatedSource(id string, fn func(string) domain.Record) *SimulatedSource {
	return &SimulatedSource{id: id + "-simulated", fn: fn}
}

func (s *SimulatedSource) ID() string { return s.id }

func (s *SimulatedSource) Lookup(_ context.Context, identifier string) (domain.Record, error) {
	return s.fn(identifier), nil
}

// NewSimulatedSources wires a full source set with deterministic records.
// Used when DATA_MODE=simulated and throughout the test suites.
func NewSimulatedSources() *Sources {
	return &Sources{
		Registry: NewSimulatedSource("registry", func(id string) domain.Record {
			h := seed(id)
			activities := []string{
				"wholesale trade",
				"software development",
				"civil construction",
				"food manufacturing",
				"freight transport",
			}
			return domain.Record{
				"name":          fmt.Sprintf("SIMULATED ENTITY %s", tail(id, 4)),
				"status":        "ATIVA",
				"opened":        fmt.Sprintf("20%02d-01-15", h%20),
				"address":       "Av. Central, 100, São Paulo, SP",
				"main_activity": activities[h%uint32(len(activities))],
			}
		}),
		Sanctions: NewSimulatedSource("sanctions", func(id string) domain.Record {
			count := 0
			if seed(id)%11 == 0 {
				count = 1
			}
			return domain.Record{"count": count}
		}),
		Litigation: NewSimulatedSource("litigation", func(id string) domain.Record {
			return domain.Record{"count": int(seed(id) % 10)}
		}),
		Tax: NewSimulatedSource("tax", func(id string) domain.Record {
			outstanding := 0
			if seed(id)%7 == 0 {
				outstanding = 2
			}
			return domain.Record{"status": "ATIVA", "outstanding": outstanding}
		}),
		News: NewSimulatedSource("news", func(id string) domain.Record {
			h := seed(id)
			var headlines []string
			switch h % 3 {
			case 0:
				headlines = []string{"company expands operations and wins sector award"}
			case 1:
				headlines = []string{"quarterly results released"}
			default:
				headlines = []string{"company named in fraud investigation"}
			}
			return domain.Record{"headlines": headlines, "mention_count": len(headlines)}
		}),
		UNSanctions: NewSimulatedSource("un-sanctions", func(id string) domain.Record {
			return domain.Record{"listed": seed(id)%29 == 0}
		}),
		PEP: NewSimulatedSource("pep", func(id string) domain.Record {
			return domain.Record{"listed": seed(id)%13 == 0}
		}),
		Environmental: NewSimulatedSource("environmental", func(id string) domain.Record {
			return domain.Record{"violation": seed(id)%17 == 0}
		}),
		Labor: NewSimulatedSource("labor", func(id string) domain.Record {
			return domain.Record{"violation": seed(id)%19 == 0}
		}),
	}
}

func seed(identifier string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return h.Sum32()
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

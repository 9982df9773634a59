package probe

// Policy collects every scoring constant in one place. The values are
// presentation-calibrated rather than derived from a regulatory formula, so
// they are configuration, not business logic scattered through the probes.
type Policy struct {
	CadastralOK   int // registry lookup succeeded
	CadastralFail int // no registry data

	SanctionsListed int
	SanctionsClear  int

	LitigationBase    int // score before per-case deduction
	LitigationPerCase int
	LitigationFloor   int

	TaxOutstanding int
	TaxClear       int

	MediaPositive int
	MediaNeutral  int
	MediaNegative int

	PEPListed int
	PEPClear  int

	IntlListed int
	IntlClear  int

	EnvViolation int
	EnvClear     int

	LaborViolation int
	LaborClear     int

	NotApplicable int // organization-only probe on an individual document

	StaticVariation int // half-range of the identifier-derived variation
}

// DefaultPolicy returns the canonical scoring table.
func DefaultPolicy() Policy {
	return Policy{
		CadastralOK:   95,
		CadastralFail: 50,

		SanctionsListed: 40,
		SanctionsClear:  85,

		LitigationBase:    90,
		LitigationPerCase: 5,
		LitigationFloor:   10,

		TaxOutstanding: 55,
		TaxClear:       85,

		MediaPositive: 85,
		MediaNeutral:  70,
		MediaNegative: 45,

		PEPListed: 60,
		PEPClear:  90,

		IntlListed: 30,
		IntlClear:  85,

		EnvViolation: 40,
		EnvClear:     85,

		LaborViolation: 25,
		LaborClear:     85,

		NotApplicable: 85,

		StaticVariation: 15,
	}
}

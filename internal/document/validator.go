// Package document validates and formats the two supported national
// registration numbers: CPF (individuals, 11 digits) and CNPJ (legal
// entities, 14 digits). Everything here is a pure function over its input —
// no I/O, no state.
package document

import "strings"

// Validation is the outcome of classifying and checking a raw document string.
type Validation struct {
	Valid    bool     `json:"valid"`
	Kind     string   `json:"kind"`     // cpf | cnpj | unknown
	Document string   `json:"document"` // cleaned digits
	Errors   []string `json:"errors,omitempty"`
}

// Validation error messages. Kept as values so handlers and tests can match
// on them without duplicating strings.
const (
	ErrMsgLength      = "document must be 11 or 14 digits"
	ErrMsgRepeated    = "document is a repeated digit sequence"
	ErrMsgCheckDigits = "check digits do not match"
)

// Clean strips every non-digit character from a raw document string.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Classify cleans a raw string and determines the document kind by length.
func Classify(raw string) (kind, digits string) {
	digits = Clean(raw)
	switch len(digits) {
	case 11:
		return "cpf", digits
	case 14:
		return "cnpj", digits
	default:
		return "unknown", digits
	}
}

// Validate cleans, classifies and fully checks a document string.
func Validate(raw string) Validation {
	kind, digits := Classify(raw)
	v := Validation{Kind: kind, Document: digits}

	if kind == "unknown" {
		v.Errors = append(v.Errors, ErrMsgLength)
		return v
	}
	if repeatedDigits(digits) {
		v.Errors = append(v.Errors, ErrMsgRepeated)
		return v
	}

	ok := false
	switch kind {
	case "cpf":
		ok = validCPFCheckDigits(digits)
	case "cnpj":
		ok = validCNPJCheckDigits(digits)
	}
	if !ok {
		v.Errors = append(v.Errors, ErrMsgCheckDigits)
		return v
	}

	v.Valid = true
	return v
}

// ─── Check-digit math ────────────────────────────────────────────────────────

// repeatedDigits reports whether the string is a single repeated digit
// ("00000000000" and friends). Such sequences pass the modulus-11 math but
// are degenerate and always rejected.
func repeatedDigits(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// cpfDigit computes one CPF check digit over the first n digits with weights
// n+1, n, ..., 2.
func cpfDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		d = 0
	}
	return d
}

func validCPFCheckDigits(digits string) bool {
	d1 := cpfDigit(digits, 9)
	d2 := cpfDigit(digits, 10)
	return int(digits[9]-'0') == d1 && int(digits[10]-'0') == d2
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func cnpjDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

func validCNPJCheckDigits(digits string) bool {
	d1 := cnpjDigit(digits, cnpjWeights1)
	d2 := cnpjDigit(digits, cnpjWeights2)
	return int(digits[12]-'0') == d1 && int(digits[13]-'0') == d2
}

// ─── Display formatting ──────────────────────────────────────────────────────

// Format inserts the standard separator punctuation for the given kind.
// Returns the input unchanged when the length does not match the kind.
func Format(digits, kind string) string {
	switch kind {
	case "cpf":
		if len(digits) != 11 {
			return digits
		}
		return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
	case "cnpj":
		if len(digits) != 14 {
			return digits
		}
		return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14]
	default:
		return digits
	}
}

// Mask produces the LGPD-safe display form: the middle digit groups are
// replaced with asterisks, keeping only the leading group (and, for CPF, the
// check digits; for CNPJ, the branch group). Used whenever the document
// leaves an authenticated internal context.
func Mask(digits, kind string) string {
	switch kind {
	case "cpf":
		if len(digits) != 11 {
			return digits
		}
		return digits[0:3] + ".***.**-" + digits[9:11]
	case "cnpj":
		if len(digits) != 14 {
			return digits
		}
		return digits[0:2] + ".***.***/" + digits[8:12] + "-**"
	default:
		return digits
	}
}

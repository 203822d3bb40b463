package domain

import "strings"

// Intent is the closed set of things a worker can ask for. Classifier
// output that does not match any member is coerced to IntentUnknown,
// never rejected.
type Intent string

const (
	IntentEarningsQuery  Intent = "earnings_query"
	IntentDisputeHelp    Intent = "dispute_help"
	IntentInsuranceQuery Intent = "insurance_query"
	IntentSchemeQuery    Intent = "scheme_query"
	IntentLoanQuery      Intent = "loan_query"
	IntentGreeting       Intent = "greeting"
	IntentUnknown        Intent = "unknown"
)

// Intents lists every valid member of the closed set.
var Intents = []Intent{
	IntentEarningsQuery,
	IntentDisputeHelp,
	IntentInsuranceQuery,
	IntentSchemeQuery,
	IntentLoanQuery,
	IntentGreeting,
	IntentUnknown,
}

// ParseIntent maps a raw string onto the closed set, coercing anything
// unrecognized to IntentUnknown.
func ParseIntent(raw string) Intent {
	for _, it := range Intents {
		if string(it) == raw {
			return it
		}
	}
	return IntentUnknown
}

// EntityUnknown marks a string entity the classifier could not extract.
// Absent fields always carry this marker so templates can render a
// placeholder deterministically.
const EntityUnknown = "?"

// AmountUnknown marks an amount the classifier could not extract.
// Extracted amounts are always non-negative rupee values.
const AmountUnknown float64 = -1

// Entities holds the structured fields extracted alongside the intent.
type Entities struct {
	Platform   string  `json:"platform"`
	TimePeriod string  `json:"time_period"`
	Amount     float64 `json:"amount"`
	IssueType  string  `json:"issue_type"`
}

// UnknownEntities returns an Entities value with every field absent.
func UnknownEntities() Entities {
	return Entities{
		Platform:   EntityUnknown,
		TimePeriod: EntityUnknown,
		Amount:     AmountUnknown,
		IssueType:  EntityUnknown,
	}
}

func (e Entities) HasPlatform() bool   { return e.Platform != EntityUnknown && e.Platform != "" }
func (e Entities) HasTimePeriod() bool { return e.TimePeriod != EntityUnknown && e.TimePeriod != "" }
func (e Entities) HasAmount() bool     { return e.Amount >= 0 }
func (e Entities) HasIssueType() bool  { return e.IssueType != EntityUnknown && e.IssueType != "" }

// ClassificationResult is the typed outcome of intent classification.
// Confidence is always within [0, 1]; out-of-range model output is
// clamped during parsing, not rejected.
type ClassificationResult struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
}

// ClampConfidence forces a raw confidence value into [0, 1].
func ClampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Platforms the assistant knows about. Platform names stay in this
// Latin-script canonical form in every generated reply, whatever the
// reply language.
var KnownPlatforms = []string{"Zomato", "Swiggy", "Blinkit", "Rapido", "Urban Company"}

// CanonicalPlatform matches a raw platform string against the known set,
// case-insensitively. Returns EntityUnknown when nothing matches.
func CanonicalPlatform(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, p := range KnownPlatforms {
		if strings.EqualFold(p, trimmed) {
			return p
		}
	}
	return EntityUnknown
}

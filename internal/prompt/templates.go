package prompt

import "github.com/saathi-ai/saathi-core/internal/domain"

// Template names used across the pipeline.
const (
	TemplateIntent   = "intent_classification"
	TemplateEarnings = "earnings_summary"
	TemplateDispute  = "dispute_complaint"
)

type templateDef struct {
	version string
	vars    []Var
	text    string
}

var builtinTemplates = map[string]templateDef{
	TemplateIntent: {
		version: "v1",
		vars: []Var{
			{Name: "user_message", Kind: VarText, Required: true},
			{Name: "detected_language", Kind: VarText, Required: false, Default: "hi"},
			{Name: "platforms", Kind: VarList, Required: false, Default: "none"},
		},
		text: `You are Saathi, AI assistant for Indian gig workers (Zomato/Swiggy/Blinkit/Rapido/Urban Company).
Message: {{.user_message}} | Language: {{.detected_language}} | Platforms: {{.platforms}}

Classify intent (one of): earnings_query | dispute_help | insurance_query |
scheme_query | loan_query | greeting | unknown

Extract entities: platform, time_period, amount (rupees), issue_type

Return JSON ONLY:
{"intent":"string","confidence":0.0,"entities":{"platform":"?","time_period":"?","amount":0,"issue_type":"?"}}`,
	},

	TemplateEarnings: {
		version: "v1",
		vars: []Var{
			{Name: "earnings_json", Kind: VarJSON, Required: true},
			{Name: "name", Kind: VarText, Required: true},
			{Name: "language", Kind: VarText, Required: false, Default: "hi"},
		},
		text: `You are Saathi, a helpful friend for Indian gig workers.
Earnings: {{.earnings_json}} | Name: {{.name}} | Language: {{.language}}

Write a warm WhatsApp message (max 3 lines):
1. State total earnings (₹ amount, Latin numerals only — ₹1,200 NOT ₹१,२००)
2. Compare vs last period if available
3. One actionable tip

Tone: casual friend, NOT corporate. No markdown. Simple Hindi. Platform names in English.`,
	},

	TemplateDispute: {
		version: "v1",
		vars: []Var{
			{Name: "name", Kind: VarText, Required: true},
			{Name: "platform", Kind: VarText, Required: true},
			{Name: "issue_type", Kind: VarText, Required: true},
			{Name: "user_description", Kind: VarText, Required: true},
			{Name: "date", Kind: VarText, Required: true},
			{Name: "language", Kind: VarText, Required: false, Default: "hi"},
		},
		text: `Write a formal complaint for an Indian gig worker.
Name: {{.name}} | Platform: {{.platform}} | Issue: {{.issue_type}}
Description: {{.user_description}} | Date: {{.date}}

Requirements: professional + firm, cite specific dates/amounts, reference platform ToS,
request specific action, include [PHONE] placeholder, max 200 words.
Language: {{.language}}. Output ONLY the complaint text.`,
	},
}

// fallbackResponses is the deterministic degradation table. greeting,
// earnings_query, dispute_help and unknown always have entries; every
// other intent resolves to the unknown entry.
var fallbackResponses = map[domain.Intent]string{
	domain.IntentGreeting:      "Namaste! Main Saathi hoon. Thodi technical problem hai — thodi der mein try karein. 🙏",
	domain.IntentEarningsQuery: "Income dekhne mein problem aa rahi hai. UPI screenshot bhejo.",
	domain.IntentDisputeHelp:   "Platform ka naam aur kya hua — detail mein batao.",
	domain.IntentUnknown:       "Thoda aur detail mein batao — income, account ya koi aur cheez?",
}

package domain

import "time"

// EarningsSnapshot is one platform's earnings for one period, as stored
// by the earnings-retrieval collaborator.
type EarningsSnapshot struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	Platform  string    `json:"platform" gorm:"index"`
	Period    string    `json:"period"` // "today", "week", ...
	Total     float64   `json:"total"`  // rupees
	Trips     int       `json:"trips"`
	Incentive float64   `json:"incentive"`
	CreatedAt time.Time `json:"created_at"`
}

// EarningsReport is the figure set handed to response synthesis for an
// earnings query.
type EarningsReport struct {
	Platform      string  `json:"platform"`
	Period        string  `json:"period"`
	Total         float64 `json:"total"`
	Trips         int     `json:"trips"`
	Incentive     float64 `json:"incentive"`
	PreviousTotal float64 `json:"previous_total,omitempty"`
	HasPrevious   bool    `json:"has_previous"`
}

// EarningsData is the intent-specific payload for earnings synthesis.
type EarningsData struct {
	Name     string
	Language string
	Report   EarningsReport
}

// DisputeData is the intent-specific payload for dispute synthesis.
// Date is a pre-formatted date string; the synthesized complaint must
// contain it verbatim.
type DisputeData struct {
	Name        string
	Platform    string
	IssueType   string
	Description string
	Date        string
	Language    string
	Amount      float64 // disputed amount in rupees; AmountUnknown when absent
}

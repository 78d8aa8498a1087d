package domain

import "time"

// Credit mix categories accepted in a financial profile.
const (
	CreditMixGood    = "good"
	CreditMixAverage = "average"
	CreditMixPoor    = "poor"
)

// Assessment is a persisted scoring result. It is owned exclusively by the
// user that created it; lookups, updates and deletes are always owner-scoped.
type Assessment struct {
	AssessmentID      string    `json:"id" dynamodbav:"assessment_id"`
	UserID            string    `json:"userId" dynamodbav:"user_id"`
	FullName          string    `json:"fullName" dynamodbav:"full_name"`
	PaymentHistory    float64   `json:"paymentHistory" dynamodbav:"payment_history"`
	CreditUtilization float64   `json:"creditUtilization" dynamodbav:"credit_utilization"`
	CreditAge         float64   `json:"creditAge" dynamodbav:"credit_age"`
	CreditMix         string    `json:"creditMix" dynamodbav:"credit_mix"`
	HardInquiries     int       `json:"hardInquiries" dynamodbav:"hard_inquiries"`
	EstimatedScore    int       `json:"estimatedScore" dynamodbav:"estimated_score"`
	RiskLevel         string    `json:"riskLevel" dynamodbav:"risk_level"`
	Suggestions       []string  `json:"suggestions" dynamodbav:"suggestions"`
	CreatedAt         time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// AssessmentInput is the validated financial profile submitted for scoring.
// Numeric fields are pointers so that a legitimate zero is distinguishable
// from a missing field; out-of-range values are rejected at the boundary,
// never silently clamped.
type AssessmentInput struct {
	FullName          string   `json:"fullName" validate:"required"`
	PaymentHistory    *float64 `json:"paymentHistory" validate:"required,gte=0,lte=100"`
	CreditUtilization *float64 `json:"creditUtilization" validate:"required,gte=0,lte=100"`
	CreditAge         *float64 `json:"creditAge" validate:"required,gte=0"`
	CreditMix         string   `json:"creditMix" validate:"required,oneof=good average poor"`
	HardInquiries     *int     `json:"hardInquiries" validate:"required,gte=0"`
}

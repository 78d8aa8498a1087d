// Package scoring implements the deterministic credit-risk engine: a pure
// weighted-sum score over five bounded inputs, a risk tier derived from the
// score, and an ordered list of improvement suggestions.
package scoring

import (
	"math"
	"strconv"

	"github.com/credit-risk-api/internal/domain"
)

const (
	baseScore = 300
	maxScore  = 900
	// scoreRange spreads the weighted factors across [300, 900].
	scoreRange = 600
)

// Factor weights. They sum to 1.0 when the credit mix is "good".
const (
	weightPaymentHistory = 0.35
	weightUtilization    = 0.30
	weightCreditAge      = 0.15
	weightCreditMix      = 0.10
	weightInquiries      = 0.10
)

// Profile is a financial profile ready for scoring. Values are clamped into
// their valid ranges before the formula is applied; rejecting out-of-range
// input is the caller's job.
type Profile struct {
	PaymentHistory    float64 // percentage of on-time payments, [0,100]
	CreditUtilization float64 // percentage of available credit in use, [0,100]
	CreditAge         float64 // age of the oldest account in years, >= 0
	CreditMix         string  // "good" | "average" | "poor"
	HardInquiries     int     // recent hard inquiries, >= 0
}

// Result holds the outcome of scoring a profile.
type Result struct {
	Score       int
	RiskLevel   string
	Suggestions []string
}

// Evaluate scores a profile. It is deterministic, total and side-effect-free:
// for any clamped profile it returns a score in [300,900], a risk tier and at
// least one suggestion.
func Evaluate(p Profile) Result {
	score := Score(p)
	return Result{
		Score:       score,
		RiskLevel:   RiskLevel(score),
		Suggestions: Suggestions(p),
	}
}

// Score computes the weighted-sum score, clamped to [300,900].
func Score(p Profile) int {
	paymentHistory := clamp(p.PaymentHistory, 0, 100)
	utilization := clamp(p.CreditUtilization, 0, 100)
	creditAge := math.Max(p.CreditAge, 0)
	inquiries := math.Max(float64(p.HardInquiries), 0)

	score := float64(baseScore)
	score += (paymentHistory / 100) * weightPaymentHistory * scoreRange
	score += ((100 - utilization) / 100) * weightUtilization * scoreRange
	score += math.Min(creditAge/10, 1) * weightCreditAge * scoreRange
	score += mixBonus(p.CreditMix) * scoreRange
	score += math.Max((5-inquiries)/5, 0) * weightInquiries * scoreRange

	rounded := int(math.Round(score))
	if rounded < baseScore {
		return baseScore
	}
	if rounded > maxScore {
		return maxScore
	}
	return rounded
}

// RiskLevel maps a score to its tier. Boundaries are inclusive on the lower
// bound and evaluated top-down, first match wins.
func RiskLevel(score int) string {
	switch {
	case score >= 750:
		return "Excellent"
	case score >= 700:
		return "Good"
	case score >= 650:
		return "Average"
	case score >= 600:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// Suggestions evaluates the improvement rules in a fixed order, each
// appending at most one message. The emitted order is part of the contract.
func Suggestions(p Profile) []string {
	var tips []string

	if p.PaymentHistory < 90 {
		tips = append(tips, "Your payment history is below 90%. Focus on paying all bills on time to boost your score.")
	} else if p.PaymentHistory < 98 {
		tips = append(tips, "Maintain your good payment streak. Even one late payment can impact your score.")
	}

	if p.CreditUtilization > 30 {
		tips = append(tips, "Your credit utilization is high ("+formatPct(p.CreditUtilization)+"%). Try to keep it below 30% by paying down balances.")
	}

	if p.HardInquiries > 2 {
		tips = append(tips, "You have multiple hard inquiries. Limit new credit applications for the next 6 months.")
	}

	if p.CreditAge < 5 {
		tips = append(tips, "Your credit history is relatively young. Time will naturally improve this factor; avoid closing old accounts.")
	}

	if p.CreditMix == domain.CreditMixPoor || p.CreditMix == domain.CreditMixAverage {
		tips = append(tips, "Consider a healthy mix of secured (e.g., car loan) and unsecured (e.g., credit card) credit over time.")
	}

	if len(tips) == 0 {
		tips = append(tips, "Your financial profile looks strong! Continue maintaining these healthy habits.")
	}

	return tips
}

func mixBonus(mix string) float64 {
	switch mix {
	case domain.CreditMixGood:
		return weightCreditMix
	case domain.CreditMixAverage:
		return weightCreditMix / 2
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Package assessment persists and manages scoring results. Every operation
// is scoped to the owning user; a record belonging to someone else is
// indistinguishable from a missing one.
package assessment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/credit-risk-api/internal/application/scoring"
	"github.com/credit-risk-api/internal/domain"
	"github.com/credit-risk-api/internal/pkg/id"
)

type Service interface {
	Analyze(ctx context.Context, userID string, in domain.AssessmentInput) (*domain.Assessment, error)
	List(ctx context.Context, userID string) ([]domain.Assessment, error)
	Update(ctx context.Context, userID, assessmentID string, in domain.AssessmentInput) (*domain.Assessment, error)
	Delete(ctx context.Context, userID, assessmentID string) error
	ImportCSV(ctx context.Context, userID, filename string, r io.Reader) (*ImportResult, error)
}

type assessmentStore interface {
	Put(ctx context.Context, a *domain.Assessment) error
	Get(ctx context.Context, assessmentID string) (*domain.Assessment, error)
	QueryByUser(ctx context.Context, userID string) ([]domain.Assessment, error)
	Update(ctx context.Context, assessmentID string, updates map[string]interface{}) error
	Delete(ctx context.Context, assessmentID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type service struct {
	repo    assessmentStore
	archive objectStore
	now     func() time.Time
}

type ServiceDeps struct {
	Repo assessmentStore
	// Archive receives a copy of every uploaded CSV; may be nil.
	Archive objectStore
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.Repo, archive: deps.Archive, now: now}
}

func (s *service) Analyze(ctx context.Context, userID string, in domain.AssessmentInput) (*domain.Assessment, error) {
	res := scoring.Evaluate(toProfile(in))
	now := s.now().UTC()
	a := &domain.Assessment{
		AssessmentID:      id.New(),
		UserID:            userID,
		FullName:          in.FullName,
		PaymentHistory:    *in.PaymentHistory,
		CreditUtilization: *in.CreditUtilization,
		CreditAge:         *in.CreditAge,
		CreditMix:         in.CreditMix,
		HardInquiries:     *in.HardInquiries,
		EstimatedScore:    res.Score,
		RiskLevel:         res.RiskLevel,
		Suggestions:       res.Suggestions,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Assessment, error) {
	items, err := s.repo.QueryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Assessment{}
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, userID, assessmentID string, in domain.AssessmentInput) (*domain.Assessment, error) {
	existing, err := s.getOwned(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	res := scoring.Evaluate(toProfile(in))
	updates := map[string]interface{}{
		"full_name":          in.FullName,
		"payment_history":    *in.PaymentHistory,
		"credit_utilization": *in.CreditUtilization,
		"credit_age":         *in.CreditAge,
		"credit_mix":         in.CreditMix,
		"hard_inquiries":     *in.HardInquiries,
		"estimated_score":    res.Score,
		"risk_level":         res.RiskLevel,
		"suggestions":        res.Suggestions,
	}
	if err := s.repo.Update(ctx, assessmentID, updates); err != nil {
		return nil, err
	}

	existing.FullName = in.FullName
	existing.PaymentHistory = *in.PaymentHistory
	existing.CreditUtilization = *in.CreditUtilization
	existing.CreditAge = *in.CreditAge
	existing.CreditMix = in.CreditMix
	existing.HardInquiries = *in.HardInquiries
	existing.EstimatedScore = res.Score
	existing.RiskLevel = res.RiskLevel
	existing.Suggestions = res.Suggestions
	existing.UpdatedAt = s.now().UTC()
	return existing, nil
}

func (s *service) Delete(ctx context.Context, userID, assessmentID string) error {
	if _, err := s.getOwned(ctx, userID, assessmentID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, assessmentID)
}

// getOwned fetches an assessment and masks foreign ownership as not-found so
// callers cannot probe for other users' record ids.
func (s *service) getOwned(ctx context.Context, userID, assessmentID string) (*domain.Assessment, error) {
	a, err := s.repo.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("assessment %s: %w", assessmentID, domain.ErrNotFound)
	}
	return a, nil
}

func toProfile(in domain.AssessmentInput) scoring.Profile {
	return scoring.Profile{
		PaymentHistory:    *in.PaymentHistory,
		CreditUtilization: *in.CreditUtilization,
		CreditAge:         *in.CreditAge,
		CreditMix:         in.CreditMix,
		HardInquiries:     *in.HardInquiries,
	}
}

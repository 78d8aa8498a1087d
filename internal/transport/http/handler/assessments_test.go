package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/credit-risk-api/internal/application/assessment"
	"github.com/credit-risk-api/internal/domain"
)

type mockAssessmentService struct{ mock.Mock }

func (m *mockAssessmentService) Analyze(ctx context.Context, userID string, in domain.AssessmentInput) (*domain.Assessment, error) {
	args := m.Called(ctx, userID, in)
	var a *domain.Assessment
	if args.Get(0) != nil {
		a = args.Get(0).(*domain.Assessment)
	}
	return a, args.Error(1)
}

func (m *mockAssessmentService) List(ctx context.Context, userID string) ([]domain.Assessment, error) {
	args := m.Called(ctx, userID)
	var items []domain.Assessment
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.Assessment)
	}
	return items, args.Error(1)
}

func (m *mockAssessmentService) Update(ctx context.Context, userID, assessmentID string, in domain.AssessmentInput) (*domain.Assessment, error) {
	args := m.Called(ctx, userID, assessmentID, in)
	var a *domain.Assessment
	if args.Get(0) != nil {
		a = args.Get(0).(*domain.Assessment)
	}
	return a, args.Error(1)
}

func (m *mockAssessmentService) Delete(ctx context.Context, userID, assessmentID string) error {
	args := m.Called(ctx, userID, assessmentID)
	return args.Error(0)
}

func (m *mockAssessmentService) ImportCSV(ctx context.Context, userID, filename string, r io.Reader) (*assessment.ImportResult, error) {
	args := m.Called(ctx, userID, filename, r)
	var res *assessment.ImportResult
	if args.Get(0) != nil {
		res = args.Get(0).(*assessment.ImportResult)
	}
	return res, args.Error(1)
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int           { return &n }

func validInput() domain.AssessmentInput {
	return domain.AssessmentInput{
		FullName:          "Ana Lima",
		PaymentHistory:    floatPtr(100),
		CreditUtilization: floatPtr(10),
		CreditAge:         floatPtr(10),
		CreditMix:         domain.CreditMixGood,
		HardInquiries:     intPtr(0),
	}
}

func withChiID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAnalyze_ReturnsScore(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("Analyze", mock.Anything, "u1", mock.Anything).Return(&domain.Assessment{
		EstimatedScore: 801,
		RiskLevel:      "Excellent",
		Suggestions:    []string{"Great job! Keep maintaining your current credit habits."},
	}, nil)

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := authedReq(jsonReq(http.MethodPost, "/analyze", validInput()), "u1")
	h.Analyze(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var out AnalysisEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 801, out.EstimatedScore)
	assert.Equal(t, "Excellent", out.RiskLevel)
	assert.Len(t, out.Suggestions, 1)
}

func TestAnalyze_MissingField(t *testing.T) {
	svc := new(mockAssessmentService)
	h := NewAssessmentHandler(svc)

	in := validInput()
	in.PaymentHistory = nil
	rec := httptest.NewRecorder()
	req := authedReq(jsonReq(http.MethodPost, "/analyze", in), "u1")
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_OutOfRange(t *testing.T) {
	svc := new(mockAssessmentService)
	h := NewAssessmentHandler(svc)

	in := validInput()
	in.PaymentHistory = floatPtr(150)
	rec := httptest.NewRecorder()
	req := authedReq(jsonReq(http.MethodPost, "/analyze", in), "u1")
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_NoClaims(t *testing.T) {
	svc := new(mockAssessmentService)
	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	h.Analyze(rec, jsonReq(http.MethodPost, "/analyze", validInput()))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestList_ReturnsOwnerRecords(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("List", mock.Anything, "u1").Return([]domain.Assessment{
		{AssessmentID: "a2", UserID: "u1"},
		{AssessmentID: "a1", UserID: "u1"},
	}, nil)

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := authedReq(httptest.NewRequest(http.MethodGet, "/users", nil), "u1")
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []domain.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "a2", out[0].AssessmentID)
}

func TestList_EmptyIsJSONArray(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("List", mock.Anything, "u1").Return([]domain.Assessment{}, nil)

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := authedReq(httptest.NewRequest(http.MethodGet, "/users", nil), "u1")
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUpdate_ReturnsUpdatedRecord(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("Update", mock.Anything, "u1", "a1", mock.Anything).Return(&domain.Assessment{
		AssessmentID: "a1", UserID: "u1", EstimatedScore: 801,
	}, nil)

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := withChiID(authedReq(jsonReq(http.MethodPut, "/users/a1", validInput()), "u1"), "a1")
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out domain.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 801, out.EstimatedScore)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("Update", mock.Anything, "u1", "ghost", mock.Anything).
		Return(nil, domain.ErrNotFound)

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := withChiID(authedReq(jsonReq(http.MethodPut, "/users/ghost", validInput()), "u1"), "ghost")
	h.Update(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_OK(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("Delete", mock.Anything, "u1", "a1").Return(nil)

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := withChiID(authedReq(httptest.NewRequest(http.MethodDelete, "/users/a1", nil), "u1"), "a1")
	h.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out MessageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Assessment deleted", out.Message)
}

func TestDelete_NotFound(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("Delete", mock.Anything, "u1", "ghost").Return(domain.ErrNotFound)

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := withChiID(authedReq(httptest.NewRequest(http.MethodDelete, "/users/ghost", nil), "u1"), "ghost")
	h.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartCSV(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadCSV_ReportsCounts(t *testing.T) {
	svc := new(mockAssessmentService)
	svc.On("ImportCSV", mock.Anything, "u1", "batch.csv", mock.Anything).
		Return(&assessment.ImportResult{Imported: 2, Failed: 1, Errors: []string{"row 4: paymentHistory is not numeric"}}, nil)

	body, contentType := multipartCSV(t, "file", "batch.csv",
		"name,paymentHistory,creditUtilization,creditAge,creditMix,hardInquiries\nAna,100,10,10,good,0\n")

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := authedReq(httptest.NewRequest(http.MethodPost, "/upload-csv", body), "u1")
	req.Header.Set("Content-Type", contentType)
	h.UploadCSV(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out assessment.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Imported)
	assert.Equal(t, 1, out.Failed)
}

func TestUploadCSV_MissingFile(t *testing.T) {
	svc := new(mockAssessmentService)
	body, contentType := multipartCSV(t, "wrongfield", "batch.csv", "x")

	h := NewAssessmentHandler(svc)
	rec := httptest.NewRecorder()
	req := authedReq(httptest.NewRequest(http.MethodPost, "/upload-csv", body), "u1")
	req.Header.Set("Content-Type", contentType)
	h.UploadCSV(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ImportCSV", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHealth_OK(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

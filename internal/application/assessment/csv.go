package assessment

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/credit-risk-api/internal/domain"
	"github.com/credit-risk-api/internal/pkg/id"
	"github.com/credit-risk-api/internal/pkg/validate"
)

// ImportResult summarises a CSV batch import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	// ArchiveURL points at the stored copy of the raw upload, if archiving
	// succeeded.
	ArchiveURL string `json:"archiveUrl,omitempty"`
}

// ImportCSV applies analyze semantics to each data row of a headered CSV.
// Rows that fail validation are reported and skipped; valid rows commit
// independently. The raw file is archived best-effort before processing.
func (s *service) ImportCSV(ctx context.Context, userID, filename string, r io.Reader) (*ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	result := &ImportResult{}
	if s.archive != nil {
		key := fmt.Sprintf("csv-imports/%s/%s-%s", userID, id.New(), filename)
		url, err := s.archive.Upload(ctx, key, bytes.NewReader(raw), "text/csv")
		if err != nil {
			slog.Warn("failed to archive CSV upload", "user_id", userID, "err", err)
		} else {
			result.ArchiveURL = url
		}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", domain.ErrBadRequest)
	}
	cols := columnIndex(header)

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		in, err := rowToInput(cols, record)
		if err == nil {
			err = validate.Struct(in)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if _, err := s.Analyze(ctx, userID, *in); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

// columnIndex maps known header names to their positions. Header matching is
// case-insensitive and accepts "name" as an alias for "fullName".
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "fullname":
			cols["fullName"] = i
		case "paymenthistory":
			cols["paymentHistory"] = i
		case "creditutilization":
			cols["creditUtilization"] = i
		case "creditage":
			cols["creditAge"] = i
		case "creditmix":
			cols["creditMix"] = i
		case "hardinquiries":
			cols["hardInquiries"] = i
		}
	}
	return cols
}

func rowToInput(cols map[string]int, record []string) (*domain.AssessmentInput, error) {
	field := func(name string) string {
		if i, ok := cols[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	paymentHistory, err := parseFloat("paymentHistory", field("paymentHistory"))
	if err != nil {
		return nil, err
	}
	utilization, err := parseFloat("creditUtilization", field("creditUtilization"))
	if err != nil {
		return nil, err
	}
	creditAge, err := parseFloat("creditAge", field("creditAge"))
	if err != nil {
		return nil, err
	}
	inquiries, err := parseInt("hardInquiries", field("hardInquiries"))
	if err != nil {
		return nil, err
	}

	return &domain.AssessmentInput{
		FullName:          field("fullName"),
		PaymentHistory:    paymentHistory,
		CreditUtilization: utilization,
		CreditAge:         creditAge,
		CreditMix:         field("creditMix"),
		HardInquiries:     inquiries,
	}, nil
}

func parseFloat(name, v string) (*float64, error) {
	if v == "" {
		return nil, fmt.Errorf("missing %s", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s is not numeric", name)
	}
	return &f, nil
}

func parseInt(name, v string) (*int, error) {
	if v == "" {
		return nil, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s is not an integer", name)
	}
	return &n, nil
}

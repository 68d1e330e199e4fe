package territory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/startpacket/internal/common"
)

// ExportHeader is the first line of an exported file.
const ExportHeader = "ZipCode,AE_Email,BranchID,TerritoryName"

// ImportSummary counts what a CSV import did. Errors name the offending line.
type ImportSummary struct {
	Processed int      `json:"processed"`
	Added     int      `json:"added"`
	Updated   int      `json:"updated"`
	Errors    []string `json:"errors"`
}

func (s ImportSummary) Message() string {
	return fmt.Sprintf("Processed %d rows. Added %d, updated %d.", s.Processed, s.Added, s.Updated)
}

// Failed reports an import that only produced errors.
func (s ImportSummary) Failed() bool {
	return len(s.Errors) > 0 && s.Added == 0 && s.Updated == 0
}

// ImportCSV upserts every row of a ZipCode,AE_Email,BranchID,TerritoryName
// file. Blank lines, '#' comments and the header are skipped; a territory
// name may span the remaining unquoted columns. Row errors are collected and
// do not stop the import.
func (s *Service) ImportCSV(ctx context.Context, payload string) (ImportSummary, error) {
	summary := ImportSummary{Errors: []string{}}
	if strings.TrimSpace(payload) == "" {
		summary.Errors = append(summary.Errors, "CSV payload missing.")
		return summary, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r := csv.NewReader(strings.NewReader(payload))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.Comment = '#'

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			summary.Processed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("Line %d: %v", perr.Line, perr.Err))
			continue
		}
		if err != nil {
			return summary, err
		}
		line, _ := r.FieldPos(0)

		first := strings.TrimSpace(rec[0])
		if len(rec) == 1 && first == "" || strings.HasPrefix(first, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(first), "zipcode") {
			continue
		}

		summary.Processed++
		if len(rec) < 4 {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Line %d: Expected 4 columns.", line))
			continue
		}
		req := UpsertRequest{
			ZipCode:       rec[0],
			AEEmail:       rec[1],
			BranchID:      rec[2],
			TerritoryName: strings.Join(rec[3:], ","),
		}
		_, updated, err := s.upsertLocked(ctx, req)
		if err != nil {
			var appErr *common.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, common.ErrValidation) {
				return summary, err
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("Line %d: %s", line, appErr.Message))
			continue
		}
		if updated {
			summary.Updated++
		} else {
			summary.Added++
		}
	}

	s.logger.Info("territory csv imported",
		"processed", summary.Processed,
		"added", summary.Added,
		"updated", summary.Updated,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

// ExportCSV writes every assignment ordered by zip. Territory names are
// always quoted with embedded double quotes turned into two single quotes.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	all, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(ExportHeader)
	for _, t := range all {
		name := strings.ReplaceAll(t.TerritoryName, `"`, "''")
		fmt.Fprintf(&b, "\n%s,%s,%s,\"%s\"", t.ZipCode, t.AEEmail, t.BranchID, name)
	}
	_, err = io.WriteString(w, b.String())
	return err
}

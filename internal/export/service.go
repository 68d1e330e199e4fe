package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/startpacket/internal/entity"
	"github.com/joseph-ayodele/startpacket/internal/repository"
)

const (
	DraftsSheet   = "Drafts"
	ServicesSheet = "Services"
)

var draftHeaders = []string{
	"Draft ID",
	"Created",
	"Source",
	"Account",
	"Contact",
	"Contact Email",
	"Service Address",
	"City",
	"State",
	"Zip",
	"AE Name",
	"AE Email",
	"Branch",
	"Lead Type",
	"Requested Start",
	"Start Month",
	"One-Time Cost",
	"Combined Initial",
	"Monthly Cost",
	"Annual Cost",
	"Equipment",
	"Initial Service",
	"Maintenance Scope",
	"Covered Pests",
	"Log Book",
}

var serviceHeaders = []string{
	"Draft ID",
	"Account",
	"Service",
	"Code",
	"Frequency",
	"Per Year",
	"After Hours",
	"Initial",
	"Per Service",
}

// Service produces XLSX workbooks of stored drafts.
type Service struct {
	drafts repository.DraftRepository
	logger *slog.Logger
}

func NewService(drafts repository.DraftRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{drafts: drafts, logger: logger}
}

// ExportDraftsXLSX returns a workbook (as bytes) holding the newest limit
// drafts, one row each on the Drafts sheet and one row per service line on
// the Services sheet. limit <= 0 uses the repository default.
func (s *Service) ExportDraftsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	drafts, err := s.drafts.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "err", err)
		}
	}()

	// the default sheet becomes Drafts
	if err := f.SetSheetName(f.GetSheetName(0), DraftsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ServicesSheet); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	if err := writeRow(f, DraftsSheet, 1, toAny(draftHeaders)); err != nil {
		return nil, err
	}
	if err := writeRow(f, ServicesSheet, 1, toAny(serviceHeaders)); err != nil {
		return nil, err
	}

	serviceRow := 2
	for i, sd := range drafts {
		if err := writeRow(f, DraftsSheet, i+2, draftRow(sd)); err != nil {
			return nil, err
		}
		for _, svc := range sd.Draft.Services {
			if err := writeRow(f, ServicesSheet, serviceRow, serviceLine(sd, svc)); err != nil {
				return nil, err
			}
			serviceRow++
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(DraftsSheet, 1, 1, bold)
		_ = f.SetRowStyle(ServicesSheet, 1, 1, bold)
	}

	// Widen a few columns
	_ = f.SetColWidth(DraftsSheet, "A", "A", 38) // id
	_ = f.SetColWidth(DraftsSheet, "B", "C", 20)
	_ = f.SetColWidth(DraftsSheet, "D", "G", 28)
	_ = f.SetColWidth(DraftsSheet, "V", "W", 60) // descriptions
	_ = f.SetColWidth(DraftsSheet, "X", "X", 40)
	_ = f.SetColWidth(ServicesSheet, "A", "A", 38)
	_ = f.SetColWidth(ServicesSheet, "B", "C", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(drafts),
		"service_rows", serviceRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func draftRow(sd *entity.StoredDraft) []any {
	d := sd.Draft
	return []any{
		sd.ID.String(),
		sd.CreatedAt.UTC().Format(time.RFC3339),
		sd.SourcePath,
		str(d.AccountName),
		str(d.ContactName),
		str(d.ContactEmail),
		str(d.ServiceAddressLine1),
		str(d.ServiceCity),
		str(d.ServiceState),
		str(d.ServiceZip),
		str(d.AEName),
		str(d.AEEmail),
		d.BranchID,
		d.LeadType,
		str(d.RequestedStartDate),
		str(d.StartMonth),
		num(d.Pricing.OneTimeCost),
		num(d.CombinedInitialTotal),
		num(d.MonthlyCost),
		num(d.AnnualCost),
		d.Equipment.Summary,
		d.InitialServiceDescription,
		d.MaintenanceScopeDescription,
		strings.Join(d.CoveredPests, ", "),
		yesNo(d.LogBookNeeded),
	}
}

func serviceLine(sd *entity.StoredDraft, svc entity.Service) []any {
	after := ""
	if svc.AfterHours != nil {
		after = yesNo(*svc.AfterHours)
	}
	perYear := any("")
	if svc.ServicesPerYear != nil {
		perYear = *svc.ServicesPerYear
	}
	return []any{
		sd.ID.String(),
		str(sd.Draft.AccountName),
		svc.ServiceName,
		svc.ServiceCode,
		str(svc.FrequencyLabel),
		perYear,
		after,
		num(svc.InitialAmount),
		num(svc.PricePerService),
	}
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// num leaves absent amounts as empty cells.
func num(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

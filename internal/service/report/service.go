package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/anesteasy/api/internal/model"
)

const sheetName = "Procedimentos"

var headers = []string{"ID", "Paciente", "Idade", "Tipo de Procedimento", "Data", "Valor", "Status", "Observações"}

var columnWidths = []float64{38, 30, 8, 30, 12, 14, 12, 40}

type ProcedureSource interface {
	ListOwned(ctx context.Context, ownerID uuid.UUID) []*model.Procedure
	ListInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) []*model.Procedure
	Summarize(ctx context.Context, procedures []*model.Procedure) *model.ProcedureStats
}

type Service struct {
	procedures ProcedureSource
	loc        *time.Location
	now        func() time.Time
}

func NewService(procedures ProcedureSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{procedures: procedures, loc: loc, now: time.Now}
}

// Generate lists the owner's procedures between start and end, both
// inclusive by day. Without both bounds every procedure is listed and the
// period defaults to the current month so far.
func (s *Service) Generate(ctx context.Context, ownerID uuid.UUID, start, end *time.Time) *model.ProcedureReport {
	now := s.now().In(s.loc)
	report := &model.ProcedureReport{GeneratedAt: now}

	if start != nil && end != nil {
		from := startOfDay(*start, s.loc)
		to := startOfDay(*end, s.loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
		report.Period = model.ReportPeriod{Start: from, End: to}
		report.Procedures = s.procedures.ListInRange(ctx, ownerID, from, to)
	} else {
		report.Period = model.ReportPeriod{
			Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc),
			End:   now,
		}
		report.Procedures = s.procedures.ListOwned(ctx, ownerID)
	}
	report.Stats = s.procedures.Summarize(ctx, report.Procedures)
	return report
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func Filename(r *model.ProcedureReport) string {
	return fmt.Sprintf("relatorio_procedimentos_%s_%s.xlsx", r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02"))
}

func statusLabel(status model.PaymentStatus) string {
	switch status {
	case model.PaymentStatusPaid:
		return "Concluído"
	case model.PaymentStatusPending:
		return "Pendente"
	default:
		return "Cancelado"
	}
}

// ExportXLSX renders the report as a single-sheet workbook.
func (s *Service) ExportXLSX(r *model.ProcedureReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, p := range r.Procedures {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			p.ID.String(),
			deref(p.PatientName),
			ageOf(p.PatientAge),
			p.ProcedureType,
			p.ProcedureDate.In(s.loc).Format("02/01/2006"),
			p.ProcedureValue,
			statusLabel(p.PaymentStatus),
			deref(p.Notes),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ageOf(age *int) interface{} {
	if age == nil {
		return ""
	}
	return *age
}

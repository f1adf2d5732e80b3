package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/anesteasy/api/internal/model"
)

type fakeSource struct {
	procedures []*model.Procedure
	rangeStart time.Time
	rangeEnd   time.Time
	ranged     bool
}

func (f *fakeSource) ListOwned(context.Context, uuid.UUID) []*model.Procedure {
	return f.procedures
}

func (f *fakeSource) ListInRange(_ context.Context, _ uuid.UUID, start, end time.Time) []*model.Procedure {
	f.ranged = true
	f.rangeStart, f.rangeEnd = start, end
	return f.procedures
}

func (f *fakeSource) Summarize(_ context.Context, procedures []*model.Procedure) *model.ProcedureStats {
	return &model.ProcedureStats{Total: len(procedures)}
}

func sample() []*model.Procedure {
	name := "João"
	age := 54
	return []*model.Procedure{
		{
			Base:           model.Base{ID: uuid.New()},
			ProcedureType:  "Geral",
			ProcedureDate:  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			ProcedureValue: 1500,
			PatientName:    &name,
			PatientAge:     &age,
			PaymentStatus:  model.PaymentStatusPaid,
		},
		{
			Base:          model.Base{ID: uuid.New()},
			ProcedureType: "Raqui",
			ProcedureDate: time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC),
			PaymentStatus: model.PaymentStatusCancelled,
		},
	}
}

func TestGenerate_DefaultPeriod(t *testing.T) {
	src := &fakeSource{procedures: sample()}
	svc := NewService(src, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC) }

	r := svc.Generate(context.Background(), uuid.New(), nil, nil)
	assert.False(t, src.ranged)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), r.Period.Start)
	assert.Equal(t, 2, r.Stats.Total)
	assert.Equal(t, "relatorio_procedimentos_2024-03-01_2024-03-20.xlsx", Filename(r))
}

func TestGenerate_RangeIncludesLastDay(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src, time.UTC)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	svc.Generate(context.Background(), uuid.New(), &start, &end)
	require.True(t, src.ranged)
	assert.Equal(t, start, src.rangeStart)
	assert.True(t, src.rangeEnd.After(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, src.rangeEnd.Before(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestExportXLSX(t *testing.T) {
	svc := NewService(&fakeSource{}, time.UTC)
	procs := sample()

	data, err := svc.ExportXLSX(&model.ProcedureReport{Procedures: procs})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, procs[0].ID.String(), rows[1][0])
	assert.Equal(t, "João", rows[1][1])
	assert.Equal(t, "54", rows[1][2])
	assert.Equal(t, "10/03/2024", rows[1][4])
	assert.Equal(t, "Concluído", rows[1][6])
	assert.Equal(t, "Cancelado", rows[2][6])
	assert.Equal(t, []string{sheetName}, f.GetSheetList())
}

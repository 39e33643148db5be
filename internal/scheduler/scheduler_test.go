package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/posgate/internal/config"
	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/internal/service/history"
)

type stubLister struct {
	sales []models.Sale
}

func (l *stubLister) ListSales(context.Context, *time.Time, *time.Time) ([]models.Sale, error) {
	return l.sales, nil
}

type stubSheets struct {
	appended [][][]interface{}
	existing [][]interface{}
	readErr  error
}

func (s *stubSheets) AppendRows(_ context.Context, _ string, rows [][]interface{}) error {
	s.appended = append(s.appended, rows)
	return nil
}

func (s *stubSheets) ReadRange(context.Context, string) ([][]interface{}, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.existing, nil
}

type stubArchiver struct {
	reports []models.DailyReport
}

func (a *stubArchiver) SaveDailyReport(_ context.Context, report models.DailyReport) error {
	a.reports = append(a.reports, report)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Sheets:    config.SheetsConfig{ReportRange: "Sales!A:H"},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
	}
}

func yesterdaySales() (time.Time, []models.Sale) {
	day := time.Now().UTC().AddDate(0, 0, -1)
	price := decimal.RequireFromString("10.00")
	return day, []models.Sale{
		{EAN: "7791234567890", Description: "coffee", Quantity: 2, Price: price, Date: day},
		{EAN: "7791234567890", Description: "coffee", Quantity: 1, Price: price, Date: day},
	}
}

func TestPushDailyReportAppendsGroupedRowsAndArchives(t *testing.T) {
	day, sales := yesterdaySales()
	sheets := &stubSheets{existing: [][]interface{}{{"2020-01-01", "7791234567890"}}}
	archiver := &stubArchiver{}
	sched := NewScheduler(testConfig(), history.NewService(&stubLister{sales: sales}, nil), sheets, archiver, nil)

	sched.pushDailyReport()

	require.Len(t, sheets.appended, 1)
	rows := sheets.appended[0]
	require.Len(t, rows, 1, "same-day same-product sales must collapse to one row")
	assert.Equal(t, day.Format("2006-01-02"), rows[0][0])
	assert.Equal(t, 3, rows[0][3])
	assert.Equal(t, "30.00", rows[0][5])

	require.Len(t, archiver.reports, 1)
	report := archiver.reports[0]
	assert.Equal(t, 2, report.SalesCount)
	assert.Equal(t, 3, report.TotalQuantity)
	assert.Equal(t, "30.00", report.Revenue)
	assert.NotEmpty(t, report.ID)
}

func TestPushDailyReportSkipsDayAlreadyOnSheet(t *testing.T) {
	day, sales := yesterdaySales()
	sheets := &stubSheets{existing: [][]interface{}{
		{day.Format("2006-01-02"), "7791234567890", "coffee", 3, "10.00", "30.00", "", ""},
	}}
	archiver := &stubArchiver{}
	sched := NewScheduler(testConfig(), history.NewService(&stubLister{sales: sales}, nil), sheets, archiver, nil)

	sched.pushDailyReport()

	assert.Empty(t, sheets.appended, "a rerun must not append the same day twice")
	assert.Len(t, archiver.reports, 1)
}

func TestPushDailyReportUnreadableSheetStillPushes(t *testing.T) {
	_, sales := yesterdaySales()
	sheets := &stubSheets{readErr: errors.New("quota exceeded")}
	sched := NewScheduler(testConfig(), history.NewService(&stubLister{sales: sales}, nil), sheets, &stubArchiver{}, nil)

	sched.pushDailyReport()

	assert.Len(t, sheets.appended, 1)
}

func TestPushDailyReportWithoutSheetsStillArchives(t *testing.T) {
	_, sales := yesterdaySales()
	archiver := &stubArchiver{}
	sched := NewScheduler(testConfig(), history.NewService(&stubLister{sales: sales}, nil), nil, archiver, nil)

	sched.pushDailyReport()

	require.Len(t, archiver.reports, 1)
	assert.Equal(t, "30.00", archiver.reports[0].Revenue)
}

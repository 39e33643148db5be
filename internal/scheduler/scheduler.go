package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/config"
	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/internal/repository/sheets"
	"github.com/mamadbah2/posgate/internal/service/history"
)

// ReportArchiver persists the end-of-day summary.
type ReportArchiver interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Scheduler runs the end-of-day sales report: previous day's sales grouped by
// date+code, appended to the configured sheet and archived locally.
type Scheduler struct {
	cron       *cron.Cron
	historySvc *history.Service
	sheetsRepo sheets.Repository
	archiver   ReportArchiver
	cfg        config.Config
	location   *time.Location
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance. A nil sheets repository
// skips the sheet push but keeps the local archive.
func NewScheduler(cfg config.Config, historySvc *history.Service, sheetsRepo sheets.Repository, archiver ReportArchiver, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		historySvc: historySvc,
		sheetsRepo: sheetsRepo,
		archiver:   archiver,
		cfg:        cfg,
		location:   location,
		logger:     logger,
	}
}

// Start registers the report job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.pushDailyReport); err != nil {
		s.logger.Error("failed to schedule daily report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) pushDailyReport() {
	s.logger.Info("generating daily sales report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	day := time.Now().In(s.location).AddDate(0, 0, -1)
	sales, err := s.historySvc.Fetch(ctx, &day, &day)
	if err != nil {
		s.logger.Error("failed to fetch sales for daily report", zap.Error(err))
		return
	}

	grouped := history.Group(history.Rows(sales), history.GroupByDateCode)

	if s.sheetsRepo != nil && len(grouped) > 0 {
		if s.dayAlreadyOnSheet(ctx, day) {
			s.logger.Info("report rows already on sheet, skipping push",
				zap.String("date", day.Format("2006-01-02")))
		} else {
			rows := make([][]interface{}, 0, len(grouped))
			for _, row := range grouped {
				rows = append(rows, []interface{}{
					row.Date,
					row.EAN,
					row.Description,
					row.Quantity,
					row.Price.StringFixed(2),
					row.Total.StringFixed(2),
					row.Seller,
					row.PaymentMethod,
				})
			}
			if err := s.sheetsRepo.AppendRows(ctx, s.cfg.Sheets.ReportRange, rows); err != nil {
				s.logger.Error("failed to push report to sheet", zap.Error(err))
			}
		}
	}

	report := models.DailyReport{
		ID:        uuid.NewString(),
		Date:      time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.location),
		CreatedAt: time.Now(),
	}
	revenue := decimal.Zero
	for _, sale := range sales {
		report.SalesCount++
		report.TotalQuantity += sale.Quantity
		revenue = revenue.Add(sale.Total())
	}
	report.Revenue = revenue.StringFixed(2)

	if err := s.archiver.SaveDailyReport(ctx, report); err != nil {
		s.logger.Error("failed to archive daily report", zap.Error(err))
		return
	}

	s.logger.Info("daily report archived",
		zap.String("date", report.Date.Format("2006-01-02")),
		zap.Int("sales", report.SalesCount),
		zap.String("revenue", report.Revenue))
}

// dayAlreadyOnSheet reads the report range back and checks whether rows for
// the day were pushed on an earlier run, so a rerun after a crash does not
// append the same day twice. An unreadable sheet does not block the push.
func (s *Scheduler) dayAlreadyOnSheet(ctx context.Context, day time.Time) bool {
	existing, err := s.sheetsRepo.ReadRange(ctx, s.cfg.Sheets.ReportRange)
	if err != nil {
		s.logger.Warn("could not read sheet for duplicate check, pushing anyway", zap.Error(err))
		return false
	}

	date := day.Format("2006-01-02")
	for _, row := range existing {
		if len(row) > 0 && fmt.Sprint(row[0]) == date {
			return true
		}
	}
	return false
}

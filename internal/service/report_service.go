package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/repository"
	"github.com/andressep95/propertyhub/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	opportunityLossReport = "opportunity_loss"
	defaultLookbackDays   = 365
	day                   = 24 * time.Hour
)

var (
	opportunityLossHeader = []string{
		"property_name",
		"unit_number",
		"market_rent",
		"current_rent",
		"vacant_days",
		"vacancy_loss",
		"loss_to_lease",
		"total_opportunity_loss",
	}

	monthsPerYear = decimal.NewFromInt(12)
	daysPerYear   = decimal.NewFromInt(365)
)

// OpportunityLossFilter scopes a report run. A nil OrganizationID covers every organization;
// a zero AsOf means today.
type OpportunityLossFilter struct {
	OrganizationID *uuid.UUID
	AsOf           time.Time
}

// OpportunityLossRow is the forgone revenue of one unit over the report window.
type OpportunityLossRow struct {
	PropertyName string
	UnitID       uuid.UUID
	UnitNumber   string
	MarketRent   decimal.Decimal
	CurrentRent  *decimal.Decimal
	VacantDays   int
	VacancyLoss  decimal.Decimal
	LossToLease  decimal.Decimal
	Total        decimal.Decimal
}

type ReportService struct {
	reportRepo   repository.ReportRepository
	lookbackDays int
	logger       zerolog.Logger
}

func NewReportService(reportRepo repository.ReportRepository, lookbackDays int, logger zerolog.Logger) *ReportService {
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}
	return &ReportService{
		reportRepo:   reportRepo,
		lookbackDays: lookbackDays,
		logger:       logger.With().Str("component", "report").Logger(),
	}
}

// GenerateOpportunityLoss builds the whole CSV document in memory. On error no bytes are returned.
func (s *ReportService) GenerateOpportunityLoss(ctx context.Context, filter OpportunityLossFilter) ([]byte, error) {
	start := time.Now()

	out, rows, err := s.generateOpportunityLoss(ctx, filter)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	metrics.ReportGenerationSeconds.WithLabelValues(opportunityLossReport, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.ReportRowsTotal.WithLabelValues(opportunityLossReport).Add(float64(rows))
	s.logger.Debug().Int("rows", rows).Dur("took", time.Since(start)).Msg("opportunity loss report generated")
	return out, nil
}

func (s *ReportService) generateOpportunityLoss(ctx context.Context, filter OpportunityLossFilter) ([]byte, int, error) {
	rows, err := s.OpportunityLoss(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	if err := WriteOpportunityLossCSV(&buf, rows); err != nil {
		return nil, 0, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), len(rows), nil
}

// OpportunityLoss computes one row per unit over [asOf-lookback, asOf), ordered by
// property name, unit number and unit id.
func (s *ReportService) OpportunityLoss(ctx context.Context, filter OpportunityLossFilter) ([]OpportunityLossRow, error) {
	properties, err := s.reportRepo.PropertiesWithOccupancy(ctx, filter.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report data: %w", err)
	}

	asOf := filter.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	asOf = startOfDay(asOf)
	window := reportWindow{start: asOf.AddDate(0, 0, -s.lookbackDays), end: asOf}

	var rows []OpportunityLossRow
	for _, p := range properties {
		for _, u := range p.Units {
			rows = append(rows, opportunityLossForUnit(p.Name, u, window))
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.PropertyName != b.PropertyName {
			return a.PropertyName < b.PropertyName
		}
		if a.UnitNumber != b.UnitNumber {
			return a.UnitNumber < b.UnitNumber
		}
		return a.UnitID.String() < b.UnitID.String()
	})

	return rows, nil
}

// WriteOpportunityLossCSV writes the header and rows with standard CSV quoting.
func WriteOpportunityLossCSV(w io.Writer, rows []OpportunityLossRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(opportunityLossHeader); err != nil {
		return err
	}

	for _, r := range rows {
		currentRent := ""
		if r.CurrentRent != nil {
			currentRent = r.CurrentRent.StringFixed(2)
		}
		record := []string{
			r.PropertyName,
			r.UnitNumber,
			r.MarketRent.StringFixed(2),
			currentRent,
			strconv.Itoa(r.VacantDays),
			r.VacancyLoss.StringFixed(2),
			r.LossToLease.StringFixed(2),
			r.Total.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// reportWindow is a half-open range of whole UTC days.
type reportWindow struct {
	start, end time.Time
}

func (w reportWindow) days() int {
	return int(w.end.Sub(w.start) / day)
}

// clip returns the day offsets of [from, to) inside the window; ok is false when they do not overlap.
func (w reportWindow) clip(from time.Time, to *time.Time) (first, last int, ok bool) {
	lo := startOfDay(from)
	if lo.Before(w.start) {
		lo = w.start
	}
	hi := w.end
	if to != nil {
		if end := startOfDay(*to); end.Before(hi) {
			hi = end
		}
	}
	if !hi.After(lo) {
		return 0, 0, false
	}
	return int(lo.Sub(w.start) / day), int(hi.Sub(w.start) / day), true
}

func opportunityLossForUnit(propertyName string, u domain.Unit, w reportWindow) OpportunityLossRow {
	row := OpportunityLossRow{
		PropertyName: propertyName,
		UnitID:       u.ID,
		UnitNumber:   u.UnitNumber,
		MarketRent:   u.MarketRent,
	}

	// overlapping vacancies count once per day
	vacant := make([]bool, w.days())
	for _, v := range u.Vacancies {
		first, last, ok := w.clip(v.StartDate, v.EndDate)
		if !ok {
			continue
		}
		for i := first; i < last; i++ {
			vacant[i] = true
		}
	}
	for _, isVacant := range vacant {
		if isVacant {
			row.VacantDays++
		}
	}
	row.VacancyLoss = prorate(u.MarketRent, row.VacantDays).Round(2)

	lossToLease := decimal.Zero
	var current *domain.Lease
	for i := range u.Leases {
		l := &u.Leases[i]
		if gap := u.MarketRent.Sub(l.MonthlyRent); gap.IsPositive() {
			if first, last, ok := w.clip(l.StartDate, l.EndDate); ok {
				lossToLease = lossToLease.Add(prorate(gap, last-first))
			}
		}
		if activeOn(l, w.end) && (current == nil || laterLease(l, current)) {
			current = l
		}
	}
	row.LossToLease = lossToLease.Round(2)

	if current != nil {
		rent := current.MonthlyRent
		row.CurrentRent = &rent
	}

	row.Total = row.VacancyLoss.Add(row.LossToLease)
	return row
}

// prorate turns a monthly amount into its share over the given number of days.
func prorate(monthly decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return monthly.Mul(monthsPerYear).Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear)
}

func activeOn(l *domain.Lease, at time.Time) bool {
	if startOfDay(l.StartDate).After(at) {
		return false
	}
	return l.EndDate == nil || startOfDay(*l.EndDate).After(at)
}

func laterLease(a, b *domain.Lease) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	return a.ID.String() > b.ID.String()
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

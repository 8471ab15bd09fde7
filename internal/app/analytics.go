/**
 * @description
 * Reporting logic for the finance dashboard. Aggregation happens in SQL; this
 * file owns the window handling around it: picking a bucket granularity and
 * zero-filling the series so charts render gaps as flat lines instead of
 * skipping periods.
 */

package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

const (
	dailyBucketFormat   = "2006-01-02"
	monthlyBucketFormat = "2006-01"

	// Windows longer than this many days switch to monthly buckets.
	maxDailyWindowDays = 31
)

// useMonthlyBuckets reports whether a window is too long for daily buckets.
func useMonthlyBuckets(start, end time.Time) bool {
	return end.Sub(start) > maxDailyWindowDays*24*time.Hour
}

// zeroFillSeries expands sparse bucket rows into a dense series covering the
// whole window. Buckets the database never saw come back with zero amounts.
func zeroFillSeries(points []domain.TimeSeriesPoint, start, end time.Time, monthly bool) []domain.TimeSeriesPoint {
	byPeriod := make(map[string]domain.TimeSeriesPoint, len(points))
	for _, p := range points {
		byPeriod[p.Period] = p
	}

	var filled []domain.TimeSeriesPoint
	if monthly {
		cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
		for !cursor.After(last) {
			period := cursor.Format(monthlyBucketFormat)
			if p, ok := byPeriod[period]; ok {
				filled = append(filled, p)
			} else {
				filled = append(filled, domain.TimeSeriesPoint{Period: period})
			}
			cursor = cursor.AddDate(0, 1, 0)
		}
		return filled
	}

	cursor := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		period := cursor.Format(dailyBucketFormat)
		if p, ok := byPeriod[period]; ok {
			filled = append(filled, p)
		} else {
			filled = append(filled, domain.TimeSeriesPoint{Period: period})
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return filled
}

// normalizeWindow applies the default reporting window (the last 30 days) and
// swaps inverted bounds.
func normalizeWindow(start, end *time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	s := now.AddDate(0, 0, -30)
	e := now
	if start != nil {
		s = start.UTC()
	}
	if end != nil {
		e = end.UTC()
	}
	if e.Before(s) {
		s, e = e, s
	}
	return s, e
}

// SummarizeFinance returns income/expense totals for a society over a window.
func (s *Service) SummarizeFinance(ctx context.Context, societyID uuid.UUID, start, end *time.Time) (*domain.FinanceSummary, error) {
	windowStart, windowEnd := normalizeWindow(start, end)
	return s.repo.SummarizeFinance(ctx, societyID, windowStart, windowEnd)
}

// FinanceTimeSeries returns a dense income/expense series for a society over
// a window, bucketed daily for short windows and monthly for long ones.
func (s *Service) FinanceTimeSeries(ctx context.Context, societyID uuid.UUID, start, end *time.Time) ([]domain.TimeSeriesPoint, error) {
	windowStart, windowEnd := normalizeWindow(start, end)
	monthly := useMonthlyBuckets(windowStart, windowEnd)

	points, err := s.repo.FinanceTimeSeries(ctx, societyID, windowStart, windowEnd, monthly)
	if err != nil {
		return nil, err
	}
	return zeroFillSeries(points, windowStart, windowEnd, monthly), nil
}

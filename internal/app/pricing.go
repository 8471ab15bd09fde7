/**
 * @description
 * Subscription pricing. Plans are priced per flat per day, with longer
 * commitments earning a lower daily rate. The 540-day plan is priced as a
 * full year at the yearly rate plus a discounted half year on top.
 *
 * All amounts are in paise.
 */

package app

import "errors"

// Daily per-flat rates in paise.
const (
	rate90Days  = 150
	rate180Days = 125
	rate360Days = 100

	// The extra half year of a 540-day plan.
	rate540Extra = 75
)

// minBillableFlats is the floor applied to flat counts at purchase time so
// that very small societies still cover a workable subscription amount.
const minBillableFlats = 12

var ErrUnsupportedPlan = errors.New("unsupported subscription plan")

// PlanPrice returns the price in paise of a subscription plan for the given
// flat count. Only the fixed plan durations are sold.
func PlanPrice(days, flatCount int) (int64, error) {
	if flatCount <= 0 {
		return 0, ErrUnsupportedPlan
	}
	flats := int64(flatCount)
	switch days {
	case 90:
		return flats * 90 * rate90Days, nil
	case 180:
		return flats * 180 * rate180Days, nil
	case 360:
		return flats * 360 * rate360Days, nil
	case 540:
		return flats * (360*rate360Days + 180*rate540Extra), nil
	default:
		return 0, ErrUnsupportedPlan
	}
}

// MinFlatCount returns the smallest flat count a society may purchase for,
// the larger of its registered property count and the billing floor.
func MinFlatCount(totalProperties int) int {
	if totalProperties < minBillableFlats {
		return minBillableFlats
	}
	return totalProperties
}

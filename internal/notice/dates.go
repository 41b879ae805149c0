package notice

import (
	"time"

	"caseflow/internal/casefacts"
	"caseflow/internal/rules"
)

// minNoticeDays returns the statutory minimum notice period for the route
// given the grounds the landlord relies on. Ground-specific periods only ever
// lengthen the route's baseline, never shorten it.
func minNoticeDays(route rules.Route, grounds []rules.Ground) int {
	days := route.MinNoticeDays
	for _, g := range grounds {
		if g.Route == route.Code && g.MinNoticeDays > days {
			days = g.MinNoticeDays
		}
	}
	return days
}

// minimumExpiry computes the earliest legally valid expiry date for a notice
// served on serviceDate. The floor is the later of service date plus the
// statutory minimum and, where the route requires it, the fixed-term end
// date; for routes whose notices must expire at a rental period boundary the
// floor then rolls forward to the next period end.
func minimumExpiry(route rules.Route, grounds []rules.Ground, serviceDate time.Time, tenancy casefacts.Tenancy) time.Time {
	floor := serviceDate.AddDate(0, 0, minNoticeDays(route, grounds))

	if route.ExpiryAfterFixedTerm && tenancy.FixedTermEndDate.Present {
		if end := tenancy.FixedTermEndDate.Value; end.After(floor) {
			floor = end
		}
	}

	if route.ExpiryMustAlignToRentPeriod && tenancy.StartDate.Present && tenancy.RentPeriod.Present {
		floor = alignToPeriodEnd(floor, tenancy.StartDate.Value, tenancy.RentPeriod.Value)
	}

	return floor
}

// alignToPeriodEnd rolls floor forward to the last day of the rental period
// it falls in. Period boundaries run from the tenancy start date. If floor
// already sits on a period end it is returned unchanged.
func alignToPeriodEnd(floor, tenancyStart time.Time, rentPeriod string) time.Time {
	boundary := tenancyStart
	for !boundary.After(floor) {
		boundary = nextPeriodStart(boundary, rentPeriod)
	}
	return boundary.AddDate(0, 0, -1)
}

// alignedToPeriodEnd reports whether date is the last day of a rental period.
func alignedToPeriodEnd(date, tenancyStart time.Time, rentPeriod string) bool {
	return alignToPeriodEnd(date, tenancyStart, rentPeriod).Equal(date)
}

func nextPeriodStart(boundary time.Time, rentPeriod string) time.Time {
	switch rentPeriod {
	case casefacts.RentPeriodWeekly:
		return boundary.AddDate(0, 0, 7)
	case casefacts.RentPeriodFortnightly:
		return boundary.AddDate(0, 0, 14)
	case casefacts.RentPeriodQuarterly:
		return boundary.AddDate(0, 3, 0)
	default:
		return boundary.AddDate(0, 1, 0)
	}
}

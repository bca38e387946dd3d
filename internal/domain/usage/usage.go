package usage

import (
	"fmt"
	"time"

	"github.com/hukukai/lexcore/internal/domain"
)

// Period is the budget window a report covers.
type Period string

// Budget window constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", domain.ErrInvalidInput, s)
	}
}

// Report is the embedding token budget for one UTC window.
type Report struct {
	period    Period
	start     time.Time
	end       time.Time
	used      int64
	limit     int64
	remaining int64
}

// NewReport creates a report. limit 0 means unlimited; remaining is then ignored.
func NewReport(period Period, start, end time.Time, used, limit, remaining int64) Report {
	if limit <= 0 {
		limit, remaining = 0, -1
	}
	return Report{
		period:    period,
		start:     start,
		end:       end,
		used:      used,
		limit:     limit,
		remaining: remaining,
	}
}

// Period returns the budget window.
func (r Report) Period() Period { return r.period }

// Start returns the window start.
func (r Report) Start() time.Time { return r.start }

// End returns the window end, which is also when the budget resets.
func (r Report) End() time.Time { return r.end }

// TokensUsed returns tokens consumed in the window.
func (r Report) TokensUsed() int64 { return r.used }

// TokensLimit returns the token cap, 0 if unlimited.
func (r Report) TokensLimit() int64 { return r.limit }

// TokensRemaining returns tokens left, -1 if unlimited.
func (r Report) TokensRemaining() int64 { return r.remaining }

// Unlimited reports whether the window has no cap.
func (r Report) Unlimited() bool { return r.limit == 0 }

// Exhausted reports whether the cap has been reached.
func (r Report) Exhausted() bool { return r.limit > 0 && r.remaining <= 0 }

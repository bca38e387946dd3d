package usage

import (
	"errors"
	"testing"
	"time"

	"github.com/hukukai/lexcore/internal/domain"
)

func TestNewReport(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	r := NewReport(PeriodMonth, start, end, 384200, 1000000, 615800)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if !r.Start().Equal(start) || !r.End().Equal(end) {
		t.Errorf("window = %v..%v", r.Start(), r.End())
	}
	if r.TokensUsed() != 384200 {
		t.Errorf("TokensUsed() = %d", r.TokensUsed())
	}
	if r.TokensLimit() != 1000000 {
		t.Errorf("TokensLimit() = %d", r.TokensLimit())
	}
	if r.TokensRemaining() != 615800 {
		t.Errorf("TokensRemaining() = %d", r.TokensRemaining())
	}
	if r.Unlimited() || r.Exhausted() {
		t.Error("report should be limited and not exhausted")
	}
}

func TestNewReport_Unlimited(t *testing.T) {
	r := NewReport(PeriodDay, time.Time{}, time.Time{}, 500, 0, 123)

	if !r.Unlimited() {
		t.Error("expected unlimited")
	}
	if r.TokensRemaining() != -1 {
		t.Errorf("TokensRemaining() = %d, want -1", r.TokensRemaining())
	}
	if r.Exhausted() {
		t.Error("unlimited report cannot be exhausted")
	}
}

func TestNewReport_Exhausted(t *testing.T) {
	r := NewReport(PeriodDay, time.Time{}, time.Time{}, 5000, 5000, 0)
	if !r.Exhausted() {
		t.Error("expected exhausted")
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodDay, false},
		{"day", PeriodDay, false},
		{"month", PeriodMonth, false},
		{"total", "", true},
		{"DAY", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

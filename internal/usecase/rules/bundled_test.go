package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/hukukai/lexcore/internal/ruleset"
)

// bundledEngine evaluates against the shipped data/rules.json with the real clock.
func bundledEngine(t *testing.T) *Engine {
	t.Helper()
	rs, problems := ruleset.LoadFile("../../../data/rules.json")
	for _, p := range problems {
		t.Errorf("rules.json: %v", p)
	}
	if len(rs) == 0 {
		t.Fatal("rules.json decoded to an empty rule set")
	}
	return New(rs)
}

func todayMinus(n int) string {
	return time.Now().AddDate(0, 0, -n).Format("02.01.2006")
}

func TestBundledRules_ConsumerAboveLimit(t *testing.T) {
	got := bundledEngine(t).Evaluate("tuketici_haklari", "Telefonu 150.000 TL'ye satın aldım.", "")
	if !strings.Contains(got, "104.000 TL") || !strings.Contains(got, "Mahkeme") {
		t.Errorf("expected court referral with limit, got %q", got)
	}
}

func TestBundledRules_ConsumerBelowLimit(t *testing.T) {
	if got := bundledEngine(t).Evaluate("tuketici_haklari", "Ürün bedeli 50.000 TL.", ""); got != "" {
		t.Errorf("expected no warnings, got %q", got)
	}
}

func TestBundledRules_TrafficDeadlinePassed(t *testing.T) {
	text := "Cezanın tebliği " + todayMinus(40) + " tarihinde yapıldı."
	got := strings.ToLower(bundledEngine(t).Evaluate("trafik_cezasi", text, ""))
	if !strings.Contains(got, "süre") && !strings.Contains(got, "15 gün") {
		t.Errorf("expected deadline warning, got %q", got)
	}
}

func TestBundledRules_TrafficDateFromOCR(t *testing.T) {
	date := todayMinus(60)
	got := bundledEngine(t).Evaluate("trafik_cezasi", "İtiraz ediyorum.", "Tebellüğ Tarihi: "+date)
	if !strings.Contains(got, date) {
		t.Errorf("expected warning quoting %s, got %q", date, got)
	}
}

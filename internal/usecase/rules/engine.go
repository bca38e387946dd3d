// Package rules evaluates free text against the per-category legal thresholds.
//
// Evaluation is a single deterministic pass over an ordered checklist of rule
// kinds: monetary limits, date windows, required keywords, then the
// category-specific special cases. The engine holds no mutable state and is
// safe for concurrent use.
package rules

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hukukai/lexcore/internal/domain/rule"
)

// maxAgeDays rejects dates further back than five years (OCR noise).
const maxAgeDays = 365 * 5

// Warning is a single fired rule.
type Warning struct {
	Kind    rule.Kind
	Message string
}

// Engine evaluates text against a RuleSet.
type Engine struct {
	rules    rule.RuleSet
	now      func() time.Time
	logger   *zap.Logger
	warnings *prometheus.CounterVec
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock sets the evaluation instant source (default time.Now).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger for skipped candidates and unformatted templates.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithWarningCounter sets a counter vec with labels "category", "kind",
// incremented for every fired warning.
func WithWarningCounter(c *prometheus.CounterVec) Option {
	return func(e *Engine) { e.warnings = c }
}

// New creates an Engine over an immutable RuleSet.
func New(rs rule.RuleSet, opts ...Option) *Engine {
	e := &Engine{rules: rs, now: time.Now, logger: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	if e.rules == nil {
		e.rules = rule.RuleSet{}
	}
	return e
}

// Evaluate returns the fired warnings joined by newlines, or "" when no rule fired.
func (e *Engine) Evaluate(category, userText, ocrText string) string {
	warnings := e.Check(category, userText, ocrText)
	if len(warnings) == 0 {
		return ""
	}
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.Message
	}
	return strings.Join(msgs, "\n")
}

// Check returns the fired warnings in checklist order.
func (e *Engine) Check(category, userText, ocrText string) []Warning {
	cr, ok := e.rules.For(category)
	if !ok || cr.IsEmpty() {
		return nil
	}

	text := strings.ToLower(userText + " " + ocrText)
	now := e.now()

	var out []Warning
	emit := func(kind rule.Kind, tmpl rule.Template, values map[string]string) {
		msg, ok := tmpl.Format(values)
		if specs := tmpl.FormatSpecs(); len(specs) > 0 {
			e.logger.Debug("Rule template format spec ignored",
				zap.String("category", category),
				zap.String("kind", string(kind)),
				zap.Strings("placeholders", specs),
			)
		}
		if !ok {
			e.logger.Debug("Rule template left unformatted",
				zap.String("category", category),
				zap.String("kind", string(kind)),
			)
		}
		if msg == "" {
			return
		}
		out = append(out, Warning{Kind: kind, Message: msg})
		if e.warnings != nil {
			e.warnings.WithLabelValues(category, string(kind)).Inc()
		}
	}

	if cr.Monetary != nil {
		e.checkMonetary(cr.Monetary, text, emit)
	}
	if len(cr.DateWindows) > 0 {
		dates := extractDates(text)
		for _, w := range cr.DateWindows {
			e.checkDateWindow(w, dates, now, emit)
		}
	}
	if cr.Required != nil && !containsAny(text, cr.Required.Words) {
		emit(rule.KindRequiredKeywords, cr.Required.Message, nil)
	}
	if category == rule.RentCategory && cr.Rent != nil && containsAny(text, cr.Rent.Triggers) {
		emit(rule.KindRentIncrease, cr.Rent.Message, map[string]string{"oran": cr.Rent.Rate})
	}
	if category == rule.CyberCrimeCategory && cr.URL != nil && !urlRegex.MatchString(text) {
		emit(rule.KindURLPresence, cr.URL.Message, map[string]string{"url_var_mi": "URL"})
	}

	return out
}

type emitFunc func(kind rule.Kind, tmpl rule.Template, values map[string]string)

func (e *Engine) checkMonetary(m *rule.MonetaryLimit, text string, emit emitFunc) {
	for _, c := range extractAmounts(text) {
		if !c.ok {
			e.logger.Debug("Skipping unparseable amount", zap.String("raw", c.raw))
			continue
		}
		if c.value <= m.Limit {
			continue
		}
		emit(rule.KindMonetary, m.Message, map[string]string{
			"deger":      formatAmount(c.value),
			"limit_ilce": formatAmount(m.Limit),
			"limit":      formatAmount(m.Limit),
		})
	}
}

func (e *Engine) checkDateWindow(w rule.DateWindow, dates []candidate[time.Time], now time.Time, emit emitFunc) {
	for _, c := range dates {
		if !c.ok {
			e.logger.Debug("Skipping unparseable date", zap.String("raw", c.raw))
			continue
		}
		diff := daysSince(now, c.value)
		if diff <= 0 || diff <= w.Days || diff >= maxAgeDays {
			continue
		}
		emit(w.Kind, w.Message, map[string]string{
			"fark_gun": strconv.Itoa(diff),
			"fark_ay":  oneDecimal(float64(diff) / 30),
			"fark_yil": oneDecimal(float64(diff) / 365),
			"tarih":    c.raw,
			"limit":    strconv.Itoa(w.Days),
		})
	}
}

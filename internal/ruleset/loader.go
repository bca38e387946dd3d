// Package ruleset decodes the category-keyed rule configuration into a typed rule.RuleSet.
//
// The resource is a nested mapping (category → rule kind → parameters) in
// JSON or YAML. Malformed input never fails the load: a malformed document
// yields an empty set, and a malformed entry is skipped and reported.
package ruleset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hukukai/lexcore/internal/domain/rule"
)

// Configuration keys.
const (
	keyMessage         = "uyari_mesaji"
	keyMissingDocument = "eksik_belge_mesaji"
	keyLimitDistrict   = "2025_limit_ilce"
	keyLimit           = "limit"
	keyDays            = "gun"
	keyPeriodDays      = "sure_gun"
	keyLimitMonths     = "zaman_asimi_ay"
	keyLimitYears      = "zaman_asimi_yil"
	keyRate            = "oran"
	keyTriggers        = "tetikleyiciler"
)

// Defaults for optional parameters.
const (
	DefaultRentRate               = "71.5"
	DefaultMissingDocumentMessage = "Başvurunuz için gerekli belge veya bilgi metinde bulunamadı."
)

// DefaultRentTriggers are the words signalling a rent increase.
var DefaultRentTriggers = []string{"zam", "artış"}

// EntryError describes a skipped configuration entry.
type EntryError struct {
	Category string
	Kind     string
	Err      error
}

func (e *EntryError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("rules[%s]: %v", e.Category, e.Err)
	}
	return fmt.Sprintf("rules[%s][%s]: %v", e.Category, e.Kind, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Load decodes raw configuration, discarding diagnostics.
func Load(raw []byte) rule.RuleSet {
	rs, _ := Decode(raw)
	return rs
}

// LoadFile reads and decodes a rule file. A missing file yields an empty set
// and no diagnostics.
func LoadFile(path string) (rule.RuleSet, []error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rule.RuleSet{}, nil
		}
		return rule.RuleSet{}, []error{fmt.Errorf("read rules %s: %w", path, err)}
	}
	return Decode(data)
}

// Decode decodes raw configuration and returns every skipped entry as an error.
func Decode(raw []byte) (rule.RuleSet, []error) {
	rs := rule.RuleSet{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return rs, nil
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		return rs, []error{fmt.Errorf("decode rules: %w", err)}
	}

	var problems []error
	categories := make([]string, 0, len(doc))
	for name := range doc {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, name := range categories {
		params, ok := asMap(doc[name])
		if !ok {
			problems = append(problems, &EntryError{Category: name, Err: errors.New("category is not a mapping")})
			continue
		}
		cr, errs := decodeCategory(name, params)
		problems = append(problems, errs...)
		rs[name] = cr
	}
	return rs, problems
}

// decodeDocument accepts JSON (rules.json) or YAML.
func decodeDocument(raw []byte) (map[string]any, error) {
	var doc map[string]any
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err == nil {
			return doc, nil
		}
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return doc, nil
}

func decodeCategory(name string, params map[string]any) (rule.CategoryRules, []error) {
	var (
		cr       rule.CategoryRules
		problems []error
	)
	fail := func(kind rule.Kind, err error) {
		problems = append(problems, &EntryError{Category: name, Kind: string(kind), Err: err})
	}

	if v, ok := params[string(rule.KindMonetary)]; ok {
		if m, err := decodeMonetary(v); err != nil {
			fail(rule.KindMonetary, err)
		} else {
			cr.Monetary = m
		}
	}

	for _, kind := range rule.DateWindowKinds {
		v, ok := params[string(kind)]
		if !ok {
			continue
		}
		w, err := decodeDateWindow(kind, v)
		if err != nil {
			fail(kind, err)
			continue
		}
		cr.DateWindows = append(cr.DateWindows, w)
	}

	if v, ok := params[string(rule.KindRequiredKeywords)]; ok {
		words, err := asStrings(v)
		switch {
		case err != nil:
			fail(rule.KindRequiredKeywords, err)
		case len(words) > 0:
			msg := DefaultMissingDocumentMessage
			if s, ok := params[keyMissingDocument].(string); ok && s != "" {
				msg = s
			}
			for i := range words {
				words[i] = strings.ToLower(words[i])
			}
			cr.Required = &rule.RequiredKeywords{Words: words, Message: rule.Template(msg)}
		}
	}

	if v, ok := params[string(rule.KindRentIncrease)]; ok {
		if r, err := decodeRent(v); err != nil {
			fail(rule.KindRentIncrease, err)
		} else {
			cr.Rent = r
		}
	}

	if v, ok := params[string(rule.KindURLPresence)]; ok {
		if m, ok := asMap(v); !ok {
			fail(rule.KindURLPresence, errors.New("not a mapping"))
		} else {
			cr.URL = &rule.URLPresence{Message: rule.Template(stringParam(m, keyMessage))}
		}
	}

	return cr, problems
}

func decodeMonetary(v any) (*rule.MonetaryLimit, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, errors.New("not a mapping")
	}
	limit, err := firstNumber(m, keyLimitDistrict, keyLimit)
	if err != nil {
		return nil, err
	}
	return &rule.MonetaryLimit{Limit: limit, Message: rule.Template(stringParam(m, keyMessage))}, nil
}

func decodeDateWindow(kind rule.Kind, v any) (rule.DateWindow, error) {
	m, ok := asMap(v)
	if !ok {
		return rule.DateWindow{}, errors.New("not a mapping")
	}

	days := 0
	for _, p := range []struct {
		key  string
		mult int
	}{
		{keyDays, 1}, {keyPeriodDays, 1}, {keyLimitMonths, 30}, {keyLimitYears, 365},
	} {
		raw, present := m[p.key]
		if !present {
			continue
		}
		n, ok := toFloat(raw)
		if !ok {
			return rule.DateWindow{}, fmt.Errorf("%s: not a number", p.key)
		}
		if n != 0 {
			days = int(n) * p.mult
			break
		}
	}
	if days <= 0 {
		return rule.DateWindow{}, errors.New("no positive day/month/year window")
	}
	return rule.DateWindow{Kind: kind, Days: days, Message: rule.Template(stringParam(m, keyMessage))}, nil
}

func decodeRent(v any) (*rule.RentIncrease, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, errors.New("not a mapping")
	}
	r := &rule.RentIncrease{
		Rate:     DefaultRentRate,
		Triggers: DefaultRentTriggers,
		Message:  rule.Template(stringParam(m, keyMessage)),
	}
	if raw, ok := m[keyRate]; ok {
		switch x := raw.(type) {
		case string:
			r.Rate = x
		default:
			n, ok := toFloat(x)
			if !ok {
				return nil, fmt.Errorf("%s: not a number", keyRate)
			}
			r.Rate = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	if raw, ok := m[keyTriggers]; ok {
		words, err := asStrings(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyTriggers, err)
		}
		if len(words) > 0 {
			for i := range words {
				words[i] = strings.ToLower(words[i])
			}
			r.Triggers = words
		}
	}
	return r, nil
}

func firstNumber(m map[string]any, keys ...string) (float64, error) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		n, ok := toFloat(raw)
		if !ok {
			return 0, fmt.Errorf("%s: not a number", k)
		}
		return n, nil
	}
	return 0, nil
}

func stringParam(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asStrings(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("not a list")
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("list item %v is not a string", item)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

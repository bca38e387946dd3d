// Package rule holds the typed form of the per-category validation rules.
//
// The external configuration is a free-form nested mapping (category → rule
// kind → parameters). Each recognized rule kind is decoded into its own struct
// so the engine never touches untyped parameter bags.
package rule

// Kind names a rule kind as it appears in the configuration.
type Kind string

// Rule kinds.
const (
	KindMonetary         Kind = "parasal_sinir"
	KindFilingDeadline   Kind = "itiraz_suresi"
	KindCoolingOff       Kind = "cayma_hakki"
	KindReinstatement    Kind = "ise_iade"
	KindComplaint        Kind = "savcilik_sikayet"
	KindDefectLiability  Kind = "ayipli_mal"
	KindRequiredKeywords Kind = "zorunlu_kelimeler"
	KindRentIncrease     Kind = "kira_artisi"
	KindURLPresence      Kind = "url_tespiti"
)

// Categories with special-case rules bound to them.
const (
	RentCategory       = "kira"
	CyberCrimeCategory = "bilişim_suclari"
)

// DateWindowKinds lists date-window kinds in evaluation order.
var DateWindowKinds = []Kind{
	KindFilingDeadline,
	KindCoolingOff,
	KindReinstatement,
	KindComplaint,
	KindDefectLiability,
}

// IsDateWindow reports whether k is one of the date-window kinds.
func IsDateWindow(k Kind) bool {
	for _, dk := range DateWindowKinds {
		if dk == k {
			return true
		}
	}
	return false
}

// MonetaryLimit flags amounts above Limit.
type MonetaryLimit struct {
	Limit   float64
	Message Template
}

// DateWindow flags dates older than Days.
type DateWindow struct {
	Kind    Kind
	Days    int
	Message Template
}

// RequiredKeywords flags text that mentions none of Words.
type RequiredKeywords struct {
	Words   []string
	Message Template
}

// RentIncrease flags rent-increase mentions in the rent category.
type RentIncrease struct {
	Rate     string
	Triggers []string
	Message  Template
}

// URLPresence flags online-fraud complaints that carry no link.
type URLPresence struct {
	Message Template
}

// CategoryRules is the full rule set of a single category.
type CategoryRules struct {
	Monetary    *MonetaryLimit
	DateWindows []DateWindow // ordered as DateWindowKinds
	Required    *RequiredKeywords
	Rent        *RentIncrease
	URL         *URLPresence
}

// IsEmpty reports whether no rule is configured.
func (c *CategoryRules) IsEmpty() bool {
	return c.Monetary == nil && len(c.DateWindows) == 0 &&
		c.Required == nil && c.Rent == nil && c.URL == nil
}

// Kinds lists the configured rule kinds in evaluation order.
func (c *CategoryRules) Kinds() []Kind {
	var kinds []Kind
	if c.Monetary != nil {
		kinds = append(kinds, KindMonetary)
	}
	for _, w := range c.DateWindows {
		kinds = append(kinds, w.Kind)
	}
	if c.Required != nil {
		kinds = append(kinds, KindRequiredKeywords)
	}
	if c.Rent != nil {
		kinds = append(kinds, KindRentIncrease)
	}
	if c.URL != nil {
		kinds = append(kinds, KindURLPresence)
	}
	return kinds
}

// RuleSet maps category → rules. Immutable after load.
type RuleSet map[string]CategoryRules

// For returns the rules of a category.
func (rs RuleSet) For(category string) (CategoryRules, bool) {
	c, ok := rs[category]
	return c, ok
}

// Categories returns the number of categories with at least one rule.
func (rs RuleSet) Categories() int {
	n := 0
	for _, c := range rs {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}

package lexcore

// Backend names the similarity backend that produced a result.
const (
	BackendEmbedding     = "embedding"
	BackendTermFrequency = "term_frequency"
)

// SearchResult is one ranked legal reference.
type SearchResult struct {
	ID       string
	Title    string
	Content  string
	Category string
	Extra    map[string]string
	Score    float64
}

// SearchResponse holds ranked results, best first. Backend is "" when the
// query was too short to search.
type SearchResponse struct {
	Backend string
	Results []SearchResult
}

// Warning is a single fired rule.
type Warning struct {
	Kind    string
	Message string
}

// Evaluation is the rule engine outcome. Summary joins the warning messages
// by newline and is "" when no rule fired.
type Evaluation struct {
	Warnings []Warning
	Summary  string
}

// Analysis combines rule warnings, the best reference and the drafting
// prompt context for one request.
type Analysis struct {
	Warnings  []Warning
	Reference string
	Context   string
}

// Category describes a petition category.
type Category struct {
	ID             string
	Title          string
	Law            string
	RequiredFields []string
}

// Stats describes the loaded resources.
type Stats struct {
	Documents int
	Vectors   int
	// ByCategory counts documents per category; "" collects uncategorized ones.
	ByCategory map[string]int
	// RuleCategories is the number of categories with configured rules.
	RuleCategories int
	// SkippedRules counts rule entries dropped while loading.
	SkippedRules int
	Backend      string
}

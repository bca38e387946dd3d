package chi

// SearchParams are the query parameters of the search endpoints.
type SearchParams struct {
	Q        string
	Category *string
	Limit    *int
}

// SearchResultItem is one ranked document.
type SearchResultItem struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Category string            `json:"category"`
	Extra    map[string]string `json:"extra"`
	Score    float64           `json:"score"`
}

// SearchResponse is returned by GET /v1/search. Backend is "" for a query too
// short to search.
type SearchResponse struct {
	Backend string             `json:"backend"`
	Results []SearchResultItem `json:"results"`
}

// BestMatchResponse is returned by GET /v1/search/best.
type BestMatchResponse struct {
	Summary string `json:"summary"`
}

// EvaluateRequest is the body of POST /v1/evaluate and POST /v1/analyze.
type EvaluateRequest struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	OCRText  string `json:"ocr_text"`
}

// WarningItem is one fired rule.
type WarningItem struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// EvaluateResponse is returned by POST /v1/evaluate.
type EvaluateResponse struct {
	Warnings []WarningItem `json:"warnings"`
	Summary  string        `json:"summary"`
}

// AnalyzeResponse is returned by POST /v1/analyze.
type AnalyzeResponse struct {
	Warnings  []WarningItem `json:"warnings"`
	Reference string        `json:"reference"`
	Context   string        `json:"context"`
}

// CategoryItem describes a petition category.
type CategoryItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Law            string   `json:"law"`
	RequiredFields []string `json:"required_fields,omitempty"`
}

// CategoryListResponse is returned by GET /v1/categories.
type CategoryListResponse struct {
	Categories []CategoryItem `json:"categories"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
	Vectors   int               `json:"vectors"`
	Backend   string            `json:"backend"`
}

// UsageResponse is returned by GET /v1/usage. Timestamps are RFC 3339 UTC.
type UsageResponse struct {
	Period          string `json:"period"`
	PeriodStart     string `json:"period_start"`
	PeriodEnd       string `json:"period_end"`
	TokensUsed      int64  `json:"tokens_used"`
	TokensLimit     int64  `json:"tokens_limit"`
	TokensRemaining int64  `json:"tokens_remaining"`
	Unlimited       bool   `json:"unlimited"`
	Exhausted       bool   `json:"exhausted"`
}

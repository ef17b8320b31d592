package domain

// AgentResult is the structured output of a single analytical agent.
// Results holds the agent-specific payload (BrandResults, PricingResults,
// FeatureResults or GapResults); Confidence is the fraction of input rows
// that contributed usable data, always in [0,1].
type AgentResult struct {
	AgentName  string      `json:"agent_name"`
	Results    interface{} `json:"results"`
	Confidence float64     `json:"confidence"`
	Timestamp  string      `json:"timestamp"`
}

// Agent names as they appear in exported results.
const (
	AgentBrand   = "brand_agent"
	AgentPricing = "pricing_agent"
	AgentFeature = "feature_agent"
	AgentGap     = "gap_agent"
)

// BrandCount holds one brand's occurrence count and its share of the
// non-null brand rows.
type BrandCount struct {
	Brand string  `json:"brand"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// BrandResults is the payload of the brand agent.
type BrandResults struct {
	TotalUniqueBrands int          `json:"total_unique_brands"`
	TopBrands         []BrandCount `json:"top_brands"`
	TotalRecords      int          `json:"total_records"`
}

// PriceStatistics holds descriptive statistics over the valid price values.
type PriceStatistics struct {
	Min    float64 `json:"min_price"`
	Max    float64 `json:"max_price"`
	Mean   float64 `json:"mean_price"`
	Median float64 `json:"median_price"`
	StdDev float64 `json:"std_price"`
}

// PriceRange is the optimal price range, defined as [Q1, Q3].
type PriceRange struct {
	Q1     float64 `json:"q1_price"`
	Median float64 `json:"median_price"`
	Q3     float64 `json:"q3_price"`
	Span   float64 `json:"optimal_range_span"`
}

// PricingResults is the payload of the pricing agent. Statistics and
// OptimalRange are nil when the column held no usable numeric values.
type PricingResults struct {
	TotalRecords      int              `json:"total_records"`
	ValidPriceRecords int              `json:"valid_price_records"`
	ExcludedNegative  int              `json:"excluded_negative"`
	Statistics        *PriceStatistics `json:"price_statistics"`
	OptimalRange      *PriceRange      `json:"optimal_price_range"`
}

// FeatureCount holds one normalized feature token and its frequency.
type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// FeatureResults is the payload of the feature agent.
type FeatureResults struct {
	TotalUniqueFeatures int            `json:"total_unique_features"`
	TopFeatures         []FeatureCount `json:"top_features"`
	TotalMentions       int            `json:"total_feature_mentions"`
	TotalRecords        int            `json:"total_records"`
}

// MarketGap is one underrepresented brand-feature combination.
type MarketGap struct {
	Brand         string  `json:"brand"`
	Feature       string  `json:"feature"`
	ObservedCount int     `json:"observed_count"`
	ExpectedCount float64 `json:"expected_count"`
	GapScore      float64 `json:"gap_score"`
}

// GapResults is the payload of the gap agent. An empty Gaps list is a valid
// balanced-market outcome, not a failure.
type GapResults struct {
	TotalCombinations int         `json:"total_combinations"`
	IdentifiedGaps    int         `json:"identified_gaps_count"`
	Gaps              []MarketGap `json:"top_gaps"`
	GapThreshold      float64     `json:"gap_threshold"`
	TotalRecords      int         `json:"total_records"`
}

// LLMSummary is the narrative produced by the summarizer on success.
type LLMSummary struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

// AggregatedPayload is the unit handed to the summarizer and to exporters:
// the four agent results in fixed order (brand, pricing, feature, gap) plus
// the optional narrative.
type AggregatedPayload struct {
	RunID        string        `json:"run_id"`
	GeneratedAt  string        `json:"generated_at"`
	TotalRecords int           `json:"total_records"`
	Agents       []AgentResult `json:"agents"`
	LLMSummary   *LLMSummary   `json:"llm_summary,omitempty"`
	SummaryError string        `json:"summary_error,omitempty"`
}

// AgentByName returns the agent result with the given name, or nil.
func (p *AggregatedPayload) AgentByName(name string) *AgentResult {
	for i := range p.Agents {
		if p.Agents[i].AgentName == name {
			return &p.Agents[i]
		}
	}
	return nil
}

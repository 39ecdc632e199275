package llm

// Pricing holds the per-model rate card. Rates are USD per million tokens;
// search is priced per 1000 grounded queries. Vendors with tiered pricing set
// TierThresholdTokens: calls whose input exceeds the threshold are billed at
// the tier rates instead of the base rates.
type Pricing struct {
	InputPerMTok        float64 `json:"input_per_mtok"`
	OutputPerMTok       float64 `json:"output_per_mtok"`
	TierThresholdTokens int     `json:"tier_threshold_tokens,omitempty"`
	TierInputPerMTok    float64 `json:"tier_input_per_mtok,omitempty"`
	TierOutputPerMTok   float64 `json:"tier_output_per_mtok,omitempty"`
	SearchPerKQueries   float64 `json:"search_per_k_queries,omitempty"`
}

// Cost computes the dollar cost of a single call.
func (p Pricing) Cost(u Usage) float64 {
	input, output := p.InputPerMTok, p.OutputPerMTok
	if p.TierThresholdTokens > 0 && u.InputTokens > p.TierThresholdTokens {
		input, output = p.TierInputPerMTok, p.TierOutputPerMTok
	}

	cost := float64(u.InputTokens)/1_000_000*input +
		float64(u.OutputTokens)/1_000_000*output

	if u.SearchQueries > 0 {
		cost += float64(u.SearchQueries) / 1000 * p.SearchPerKQueries
	}

	return cost
}

// CallCost resolves the model's pricing and returns the cost of a call.
// Models missing from the rate card cost zero rather than failing the phase.
func CallCost(resolver ModelResolver, vendor, model string, u Usage) float64 {
	pricing, ok := resolver.Pricing(vendor, model)
	if !ok {
		return 0
	}
	return pricing.Cost(u)
}

package provider

// CostBreakdown represents the cost of accumulated token usage under one rate.
type CostBreakdown struct {
	InputCost    float64 // cost for input tokens
	OutputCost   float64 // cost for output tokens
	TotalCost    float64 // total cost (InputCost + OutputCost)
	InputTokens  int     // number of input tokens
	OutputTokens int     // number of output tokens
	Model        string  // model identifier the rate belongs to
}

// ComputeCost computes the cost breakdown for the given usage totals under
// the given rate. Rates are per 1000 tokens; the computation is linear and
// applies no rounding. Display formatting belongs to the presentation layer.
func ComputeCost(totals UsageTotals, rate Rate) CostBreakdown {
	inputCost := (float64(totals.InputTokens) / 1000.0) * rate.InputRate
	outputCost := (float64(totals.OutputTokens) / 1000.0) * rate.OutputRate

	return CostBreakdown{
		InputCost:    inputCost,
		OutputCost:   outputCost,
		TotalCost:    inputCost + outputCost,
		InputTokens:  totals.InputTokens,
		OutputTokens: totals.OutputTokens,
		Model:        rate.ModelID,
	}
}

// CostCalculator combines a pricing table with usage totals.
// Selecting a new model changes which rate applies to subsequent
// computations; totals already accumulated are plain token counts and are
// never retroactively adjusted.
type CostCalculator struct {
	table *PricingTable
}

// NewCostCalculator creates a calculator over the given pricing table.
// A nil table is replaced with the default table.
func NewCostCalculator(table *PricingTable) *CostCalculator {
	if table == nil {
		table = NewDefaultPricingTable()
	}
	return &CostCalculator{table: table}
}

// Calculate computes the cost of the given totals for the given model,
// falling back to the default rate for unknown model identifiers.
func (c *CostCalculator) Calculate(modelID string, totals UsageTotals) CostBreakdown {
	rate := c.table.Lookup(modelID)
	breakdown := ComputeCost(totals, rate)
	breakdown.Model = modelID
	return breakdown
}

// Table returns the underlying pricing table.
func (c *CostCalculator) Table() *PricingTable {
	return c.table
}

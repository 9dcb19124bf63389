package model

// PortfolioEntry is one holding line of an account's portfolio.
type PortfolioEntry struct {
	Scrip                         string  `json:"script"`
	CurrentBalance                float64 `json:"currentBalance"`
	PreviousClosingPrice          float64 `json:"previousClosingPrice"`
	LastTransactionPrice          float64 `json:"lastTransactionPrice"`
	ValueAsOfLastTransactionPrice float64 `json:"valueAsOfLastTransactionPrice"`
	ValueAsOfPreviousClosingPrice float64 `json:"valueAsOfPreviousClosingPrice"`
}

// MergePortfolios combines entries from multiple accounts, summing balances
// and values per scrip. Order follows first appearance.
func MergePortfolios(portfolios ...[]PortfolioEntry) []PortfolioEntry {
	var combined []PortfolioEntry
	index := make(map[string]int)
	for _, entries := range portfolios {
		for _, e := range entries {
			if i, ok := index[e.Scrip]; ok {
				combined[i].CurrentBalance += e.CurrentBalance
				combined[i].ValueAsOfLastTransactionPrice += e.ValueAsOfLastTransactionPrice
				combined[i].ValueAsOfPreviousClosingPrice += e.ValueAsOfPreviousClosingPrice
				continue
			}
			index[e.Scrip] = len(combined)
			combined = append(combined, e)
		}
	}
	return combined
}

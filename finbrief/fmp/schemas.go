package fmp

// Profile is the company profile record. Field aliases follow the FMP
// payload so archived data matches the upstream shape.
type Profile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Price       float64 `json:"price"`
	MarketCap   float64 `json:"mktCap"`
	Description string  `json:"description"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	CEO         string  `json:"ceo"`
	Website     string  `json:"website"`
}

// quote is the reduced record returned by the quote endpoint, used as a
// fallback when the profile endpoint is restricted for the account tier.
type quote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"marketCap"`
}

// KeyMetrics carries trailing-twelve-month valuation and profitability
// ratios.
type KeyMetrics struct {
	Symbol             string  `json:"symbol"`
	PERatio            float64 `json:"priceToEarningsRatioTTM"`
	EPS                float64 `json:"netIncomePerShareTTM"`
	ReturnOnEquity     float64 `json:"returnOnEquityTTM"`
	DebtToEquity       float64 `json:"debtToEquityRatioTTM"`
	GrossProfitMargin  float64 `json:"grossProfitMarginTTM"`
	NetProfitMargin    float64 `json:"netProfitMarginTTM"`
	FreeCashFlowPerShr float64 `json:"freeCashFlowPerShareTTM"`
}

// Statements bundles the three statement sets, newest first. Rows are kept
// as raw objects: the upstream payload is wide and the pipeline treats it as
// opaque data for the generator.
type Statements struct {
	IncomeStatement []map[string]any `json:"income_statement"`
	BalanceSheet    []map[string]any `json:"balance_sheet"`
	CashFlow        []map[string]any `json:"cash_flow"`
}

// RevenueSegmentation is the revenue breakdown by product and geography.
type RevenueSegmentation struct {
	ProductSegments    []map[string]any `json:"product_segments"`
	GeographicSegments []map[string]any `json:"geographic_segments"`
}

// AnalystEstimate is one period of Wall Street consensus estimates.
type AnalystEstimate struct {
	Symbol            string  `json:"symbol"`
	Date              string  `json:"date"`
	RevenueAvg        float64 `json:"revenueAvg"`
	RevenueHigh       float64 `json:"revenueHigh"`
	RevenueLow        float64 `json:"revenueLow"`
	EPSAvg            float64 `json:"epsAvg"`
	NumAnalystRevenue int     `json:"numAnalystsRevenue"`
}

// NewsItem is one market news article reference.
type NewsItem struct {
	Symbol        string `json:"symbol"`
	PublishedDate string `json:"publishedDate"`
	Title         string `json:"title"`
	Site          string `json:"site"`
	Text          string `json:"text"`
	URL           string `json:"url"`
}

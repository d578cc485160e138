package schema

// Product is one row of the fixed external product contract shared by the
// search backend and the SQL catalog (table all_products). Fields beyond
// name/price/market are optional and may be empty depending on the source.
type Product struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	MarketName   string  `json:"market_name"`
	ProductLink  string  `json:"product_link,omitempty"`
	MainCategory string  `json:"main_category,omitempty"`
	SubCategory  string  `json:"sub_category,omitempty"`
	InStock      string  `json:"in_stock,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
}

// Key is the dedup key for a product. Search results for related terms
// frequently return the same product from the same market.
func (p Product) Key() string {
	return p.Name + "_" + p.MarketName
}

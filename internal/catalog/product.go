package catalog

// Product is an immutable catalog record reconstructed from index metadata.
// Description is the free-text field used for embedding.
type Product struct {
	ID              string  `json:"id"`
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	MaxPrice        float64 `json:"max_price"`
	AllowedDiscount float64 `json:"allowed_discount"`
	CapacityGB      int     `json:"capacity_gb"`
	RAMGB           int     `json:"ram_gb"`
	BatteryMAH      int     `json:"battery_mah"`
	Processor       string  `json:"processor"`
	ScreenSize      string  `json:"screen_size"`
	BackCamera      string  `json:"back_camera"`
	FrontCamera     string  `json:"front_camera"`
	WeightGrams     int     `json:"weight_grams"`
	ImageURL        string  `json:"image_url"`
	Description     string  `json:"description"`
}

// DealPrice returns the discounted price for a special offer.
func (p Product) DealPrice() float64 {
	return p.MaxPrice - p.AllowedDiscount
}

// SpecialDeal is a time-boxed offer over one or more retrieved products.
type SpecialDeal struct {
	Heading          string    `json:"heading"`
	DealPrice        float64   `json:"deal_price"`
	ProductsInvolved []Product `json:"products_involved"`
}

package catalog

// sampleInventory is the handset inventory loaded at startup.
var sampleInventory = []Product{
	{
		ID: "mobile_13", Brand: "Samsung", Model: "Galaxy S24 Ultra",
		MaxPrice: 114900, AllowedDiscount: 11490, CapacityGB: 256, RAMGB: 12,
		BatteryMAH: 5000, Processor: "Exynos 2400", ScreenSize: "6.8 inches",
		BackCamera: "200MP + 12MP", FrontCamera: "12MP", WeightGrams: 234,
		ImageURL:    "https://images.salesvoice.example/mobile_13.jpg",
		Description: "Best for: Power users, professionals, creatives, and tech enthusiasts. Ideal use cases: Advanced photography, AI-powered productivity, intense gaming, and seamless multitasking. The ultimate flagship experience.",
	},
	{
		ID: "mobile_12", Brand: "Samsung", Model: "Galaxy S24 Ultra",
		MaxPrice: 104900, AllowedDiscount: 10490, CapacityGB: 128, RAMGB: 12,
		BatteryMAH: 5000, Processor: "Exynos 2400", ScreenSize: "6.8 inches",
		BackCamera: "200MP + 12MP", FrontCamera: "12MP", WeightGrams: 234,
		ImageURL:    "https://images.salesvoice.example/mobile_12.jpg",
		Description: "A great choice for users who want flagship features without needing maximum storage. Excellent for photography, productivity, and gaming.",
	},
	{
		ID: "mobile_11", Brand: "Apple", Model: "iPhone 15 Pro",
		MaxPrice: 89900, AllowedDiscount: 8990, CapacityGB: 256, RAMGB: 8,
		BatteryMAH: 3274, Processor: "A17 Bionic", ScreenSize: "6.1 inches",
		BackCamera: "50MP + 10MP + 12MP", FrontCamera: "12MP", WeightGrams: 187,
		ImageURL:    "https://images.salesvoice.example/mobile_11.jpg",
		Description: "Experience the cutting-edge technology of the iPhone 15 Pro. Perfect for photography, gaming, and everyday use with its powerful A17 Bionic chip.",
	},
	{
		ID: "mobile_10", Brand: "Apple", Model: "iPhone 15 Pro",
		MaxPrice: 79900, AllowedDiscount: 7990, CapacityGB: 128, RAMGB: 8,
		BatteryMAH: 3274, Processor: "A17 Bionic", ScreenSize: "6.1 inches",
		BackCamera: "50MP + 10MP + 12MP", FrontCamera: "12MP", WeightGrams: 187,
		ImageURL:    "https://images.salesvoice.example/mobile_10.jpg",
		Description: "The iPhone 15 Pro offers exceptional performance and a stunning camera system. Ideal for users who value premium design and seamless iOS experience.",
	},
	{
		ID: "mobile_09", Brand: "Google", Model: "Pixel 8",
		MaxPrice: 59900, AllowedDiscount: 5990, CapacityGB: 128, RAMGB: 8,
		BatteryMAH: 4575, Processor: "Google Tensor G3", ScreenSize: "6.2 inches",
		BackCamera: "50MP + 12MP", FrontCamera: "10.8MP", WeightGrams: 187,
		ImageURL:    "https://images.salesvoice.example/mobile_09.jpg",
		Description: "Discover the intelligence of Google Pixel 8. Featuring advanced AI capabilities, incredible camera, and a pure Android experience.",
	},
	{
		ID: "mobile_08", Brand: "Google", Model: "Pixel 8 Pro",
		MaxPrice: 69900, AllowedDiscount: 6990, CapacityGB: 256, RAMGB: 12,
		BatteryMAH: 5050, Processor: "Google Tensor G3", ScreenSize: "6.7 inches",
		BackCamera: "50MP + 48MP + 12MP", FrontCamera: "10.8MP", WeightGrams: 213,
		ImageURL:    "https://images.salesvoice.example/mobile_08.jpg",
		Description: "The Pixel 8 Pro delivers the ultimate Google experience with its pro-level camera, powerful Tensor G3 chip, and stunning display.",
	},
}

package cart

const DefaultDiscountPercentage = 20

func lookupProduct(productUID string) (LineItem, bool) {
	for _, p := range catalog {
		if p.ProductUID == productUID {
			return p, true
		}
	}
	return LineItem{}, false
}

var catalog = []LineItem{
	{
		ProductUID: "product_hockey_stick",
		Title:      "Hockey stick",
		UnitPrice:  19000,
		ImageRef:   "/images/hockey_stick.jpg",
		Rating:     4.5,
	},
	{
		ProductUID: "product_hockey_shoes",
		Title:      "Hockey shoes",
		UnitPrice:  12000,
		ImageRef:   "/images/hockey_shoes.jpg",
		Rating:     4.1,
	},
	{
		ProductUID: "product_jogging_pants",
		Title:      "Jogging pants",
		UnitPrice:  6000,
		ImageRef:   "/images/jogging_pants.jpg",
		Rating:     3.9,
	},
	{
		ProductUID: "product_hoody",
		Title:      "Hoody",
		UnitPrice:  4999,
		ImageRef:   "/images/hoody.jpg",
		Rating:     4.7,
	},
	{
		ProductUID: "product_tennis_racket",
		Title:      "Tennis racket",
		UnitPrice:  16900,
		ImageRef:   "/images/tennis_racket.jpg",
		Rating:     4.8,
	},
	{
		ProductUID: "product_tennis_balls",
		Title:      "Tennis balls",
		UnitPrice:  1000,
		ImageRef:   "/images/tennis_balls.jpg",
		Rating:     4.0,
	},
	{
		ProductUID: "product_running_socks",
		Title:      "Running socks",
		UnitPrice:  1000,
		ImageRef:   "/images/running_socks.jpg",
		Rating:     3.5,
	},
}

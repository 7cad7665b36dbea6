package cart

import (
	"time"

	"github.com/MarcGrol/shopcheckout/lib/mymoney"
)

type LineItem struct {
	ProductUID string  `json:"productUid"`
	Title      string  `json:"title"`
	UnitPrice  int64   `json:"unitPrice"`
	ImageRef   string  `json:"imageRef"`
	Rating     float64 `json:"rating"`
}

// Cart holds one entry per unit: adding a product twice gives two line items.
// Version increases on every mutation.
type Cart struct {
	UID                string
	Items              []LineItem `datastore:",noindex"`
	DiscountPercentage int64
	Version            int64
	CreatedAt          time.Time
	LastModified       *time.Time
}

func newCart(uid string, createdAt time.Time) Cart {
	return Cart{
		UID:       uid,
		Items:     []LineItem{},
		CreatedAt: createdAt,
	}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) NumberOfItems() int {
	return len(c.Items)
}

func (c Cart) Subtotal() int64 {
	total := int64(0)
	for _, item := range c.Items {
		total += item.UnitPrice
	}
	return total
}

func (c Cart) DiscountedSubtotal() int64 {
	return c.Subtotal() - c.Savings()
}

func (c Cart) Savings() int64 {
	return mymoney.Percentage(c.Subtotal(), c.DiscountPercentage)
}

func (c Cart) Snapshot() Snapshot {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Snapshot{
		CartUID:            c.UID,
		Version:            c.Version,
		Items:              items,
		Subtotal:           c.Subtotal(),
		DiscountedSubtotal: c.DiscountedSubtotal(),
		Savings:            c.Savings(),
	}
}

func (c *Cart) removeFirst(productUID string) bool {
	for idx, item := range c.Items {
		if item.ProductUID == productUID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			return true
		}
	}
	return false
}

// Snapshot is the immutable view of a cart at a given version
type Snapshot struct {
	CartUID            string
	Version            int64
	Items              []LineItem `datastore:",noindex"`
	Subtotal           int64
	DiscountedSubtotal int64
	Savings            int64
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

type View struct {
	UID                string     `json:"uid"`
	Version            int64      `json:"version"`
	Items              []LineItem `json:"items"`
	NumberOfItems      int        `json:"numberOfItems"`
	Subtotal           int64      `json:"subtotal"`
	DiscountedSubtotal int64      `json:"discountedSubtotal"`
	Savings            int64      `json:"savings"`
	DiscountPercentage int64      `json:"discountPercentage"`
	FormattedTotal     string     `json:"formattedTotal"`
}

func (c Cart) View(currency string) View {
	return View{
		UID:                c.UID,
		Version:            c.Version,
		Items:              c.Items,
		NumberOfItems:      c.NumberOfItems(),
		Subtotal:           c.Subtotal(),
		DiscountedSubtotal: c.DiscountedSubtotal(),
		Savings:            c.Savings(),
		DiscountPercentage: c.DiscountPercentage,
		FormattedTotal:     mymoney.Format(c.Subtotal(), currency),
	}
}

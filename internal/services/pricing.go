package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/sol/internal/models"
)

// Totals is the money breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount_amount"`
	Shipping decimal.Decimal `json:"shipping_cost"`
	Tax      decimal.Decimal `json:"tax_amount"`
	Total    decimal.Decimal `json:"total_amount"`
}

// ComputeTotals adds up an order. Tax is a flat rate on the discounted
// subtotal; shipping is not taxed.
func ComputeTotals(subtotal, discount, shipping, taxRate decimal.Decimal) Totals {
	tax := subtotal.Sub(discount).Mul(taxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(shipping).Add(tax),
	}
}

// LineDraft is a priced cart line ready to persist, plus the stock it needs.
type LineDraft struct {
	Item  models.OrderItem
	Stock StockLine
}

// DraftLines prices cart items and captures their snapshots at now. Lines
// with a non-positive quantity are dropped.
func DraftLines(cart []models.CartItem, now time.Time) ([]LineDraft, error) {
	drafts := make([]LineDraft, 0, len(cart))
	for _, ci := range cart {
		if ci.Quantity <= 0 {
			continue
		}
		draft, err := DraftLine(ci, now)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// DraftLine prices one cart item. The product (and variant, when referenced)
// must be loaded.
func DraftLine(ci models.CartItem, now time.Time) (LineDraft, error) {
	product := ci.Product
	if product == nil || !product.IsActive {
		name := ""
		if product != nil {
			name = product.Name
		}
		return LineDraft{}, productUnavailable(name)
	}

	unitPrice := product.BasePrice
	available := product.StockQuantity
	if ci.VariantID != nil {
		if ci.Variant == nil || !ci.Variant.IsActive || ci.Variant.ProductID != product.ID {
			return LineDraft{}, productUnavailable(product.Name)
		}
		unitPrice = unitPrice.Add(ci.Variant.PriceDelta)
		available = ci.Variant.StockQuantity
	}

	qty := decimal.NewFromInt(int64(ci.Quantity))
	item := models.OrderItem{
		ProductID:       product.ID,
		VariantID:       ci.VariantID,
		Quantity:        ci.Quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      unitPrice.Mul(qty),
		ProductSnapshot: Snapshot(product, ci.Variant, now),
	}

	return LineDraft{
		Item: item,
		Stock: StockLine{
			ProductID:   product.ID,
			VariantID:   ci.VariantID,
			Quantity:    ci.Quantity,
			ProductName: displayName(product, ci.Variant),
			Available:   available,
		},
	}, nil
}

// Snapshot copies the displayable product attributes as of now.
func Snapshot(product *models.Product, variant *models.ProductVariant, now time.Time) models.ProductSnapshot {
	snap := models.ProductSnapshot{
		Name:        product.Name,
		Description: product.Description,
		Images:      append([]string{}, product.Images...),
		BasePrice:   product.BasePrice,
		CapturedAt:  now,
	}
	if product.Brand != nil {
		snap.Brand = product.Brand.Name
	}
	if product.Category != nil {
		snap.Category = product.Category.Name
	}
	if variant != nil {
		snap.Variant = &models.VariantSnapshot{
			SKU:        variant.SKU,
			Name:       variant.Name,
			Color:      variant.Color,
			Size:       variant.Size,
			Material:   variant.Material,
			PriceDelta: variant.PriceDelta,
		}
	}
	return snap
}

// SumLines totals the line prices.
func SumLines(drafts []LineDraft) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range drafts {
		sum = sum.Add(d.Item.TotalPrice)
	}
	return sum
}

func displayName(product *models.Product, variant *models.ProductVariant) string {
	if variant != nil && variant.Name != "" {
		return product.Name + " - " + variant.Name
	}
	return product.Name
}

package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sol/internal/models"
)

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(dec("1000"), dec("50"), dec("60"), dec("0"))
	assert.True(t, dec("1010").Equal(totals.Total))
	assert.True(t, totals.Tax.IsZero())

	taxed := ComputeTotals(dec("200"), dec("20"), dec("30"), dec("0.14"))
	assert.True(t, dec("25.2").Equal(taxed.Tax))
	assert.True(t, dec("235.2").Equal(taxed.Total))
}

func sampleProduct() *models.Product {
	p := &models.Product{
		Name:          "Oud Musk",
		Description:   "50ml",
		Images:        []string{"a.jpg"},
		BasePrice:     dec("250"),
		StockQuantity: 7,
		IsActive:      true,
		Brand:         &models.Brand{Name: "Sol"},
		Category:      &models.Category{Name: "Perfume"},
	}
	p.ID = uuid.New()
	return p
}

func TestDraftLineProduct(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	product := sampleProduct()

	draft, err := DraftLine(models.CartItem{ProductID: product.ID, Product: product, Quantity: 3}, now)
	require.NoError(t, err)
	assert.True(t, dec("250").Equal(draft.Item.UnitPrice))
	assert.True(t, dec("750").Equal(draft.Item.TotalPrice))
	assert.Equal(t, 7, draft.Stock.Available)
	assert.Equal(t, "Oud Musk", draft.Stock.ProductName)
	assert.Equal(t, "Sol", draft.Item.ProductSnapshot.Brand)
	assert.Equal(t, now, draft.Item.ProductSnapshot.CapturedAt)
	assert.Nil(t, draft.Item.ProductSnapshot.Variant)

	product.Images[0] = "changed.jpg"
	assert.Equal(t, "a.jpg", draft.Item.ProductSnapshot.Images[0])
}

func TestDraftLineVariant(t *testing.T) {
	product := sampleProduct()
	variant := &models.ProductVariant{ProductID: product.ID, SKU: "OUD-100", Name: "100ml", PriceDelta: dec("120"), StockQuantity: 2, IsActive: true}
	variant.ID = uuid.New()

	draft, err := DraftLine(models.CartItem{ProductID: product.ID, Product: product, VariantID: &variant.ID, Variant: variant, Quantity: 2}, time.Now())
	require.NoError(t, err)
	assert.True(t, dec("370").Equal(draft.Item.UnitPrice))
	assert.Equal(t, 2, draft.Stock.Available)
	assert.Equal(t, "Oud Musk - 100ml", draft.Stock.ProductName)
	require.NotNil(t, draft.Item.ProductSnapshot.Variant)
	assert.Equal(t, "OUD-100", draft.Item.ProductSnapshot.Variant.SKU)
}

func TestDraftLineUnavailable(t *testing.T) {
	product := sampleProduct()
	product.IsActive = false
	_, err := DraftLine(models.CartItem{Product: product, Quantity: 1}, time.Now())
	assert.True(t, errors.Is(err, ErrProductUnavailable))

	product = sampleProduct()
	variant := &models.ProductVariant{ProductID: uuid.New(), IsActive: true}
	variant.ID = uuid.New()
	_, err = DraftLine(models.CartItem{Product: product, VariantID: &variant.ID, Variant: variant, Quantity: 1}, time.Now())
	assert.True(t, errors.Is(err, ErrProductUnavailable))
}

func TestDraftLinesSkipsEmptyQuantities(t *testing.T) {
	product := sampleProduct()
	drafts, err := DraftLines([]models.CartItem{
		{Product: product, Quantity: 0},
		{Product: product, Quantity: 2},
	}, time.Now())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.True(t, dec("500").Equal(SumLines(drafts)))
}

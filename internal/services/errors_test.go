package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderErrorFamilies(t *testing.T) {
	conflict := stockConflict("Oud Musk")
	assert.True(t, errors.Is(conflict, ErrInsufficientStock))
	assert.True(t, errors.Is(conflict, ErrStockConflict))
	assert.False(t, errors.Is(ErrInsufficientStock, ErrStockConflict))

	assert.True(t, errors.Is(ErrCouponConflict, ErrCouponExhausted))
	assert.True(t, errors.Is(productUnavailable("x"), ErrInsufficientStock))
	assert.False(t, errors.Is(ErrEmptyCart, ErrInsufficientStock))

	wrapped := fmt.Errorf("checkout: %w", insufficientStock("Rose"))
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
}

func TestOrderErrorMessage(t *testing.T) {
	err := insufficientStock("Amber").(*OrderError)
	assert.Equal(t, "insufficient_stock: Amber", err.Error())
	assert.Contains(t, err.Message(LangEnglish), "Amber")
	assert.Contains(t, err.Message(LangArabic), "Amber")
	assert.NotContains(t, err.Message(LangEnglish), "{product}")

	assert.Equal(t, http.StatusConflict, ErrStockConflict.Info.Status)
	assert.Equal(t, http.StatusNotFound, ErrOrderNotFound.Info.Status)
	assert.Equal(t, http.StatusBadRequest, ErrNotCancellable.Info.Status)
}

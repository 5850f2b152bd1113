package services

import (
	"net/http"
	"strings"
)

// ErrorInfo describes a business error surfaced to API clients. Family groups
// codes that callers treat alike: a lost stock race is still an insufficient
// stock failure, only retryable.
type ErrorInfo struct {
	Code   string
	Family string
	Status int
}

var (
	ErrorEmptyCart            = ErrorInfo{Code: "EMPTY_CART", Status: http.StatusBadRequest}
	ErrorAddressNotFound      = ErrorInfo{Code: "ADDRESS_NOT_FOUND", Status: http.StatusNotFound}
	ErrorInsufficientStock    = ErrorInfo{Code: "INSUFFICIENT_STOCK", Status: http.StatusBadRequest}
	ErrorStockConflict        = ErrorInfo{Code: "STOCK_CONFLICT", Family: "INSUFFICIENT_STOCK", Status: http.StatusConflict}
	ErrorProductUnavailable   = ErrorInfo{Code: "PRODUCT_UNAVAILABLE", Family: "INSUFFICIENT_STOCK", Status: http.StatusBadRequest}
	ErrorInvalidCoupon        = ErrorInfo{Code: "INVALID_COUPON", Status: http.StatusBadRequest}
	ErrorMinOrderNotMet       = ErrorInfo{Code: "MIN_ORDER_NOT_MET", Status: http.StatusBadRequest}
	ErrorCouponExhausted      = ErrorInfo{Code: "COUPON_EXHAUSTED", Status: http.StatusBadRequest}
	ErrorCouponConflict       = ErrorInfo{Code: "COUPON_CONFLICT", Family: "COUPON_EXHAUSTED", Status: http.StatusConflict}
	ErrorOrderNotFound        = ErrorInfo{Code: "ORDER_NOT_FOUND", Status: http.StatusNotFound}
	ErrorNotCancellable       = ErrorInfo{Code: "NOT_CANCELLABLE", Status: http.StatusBadRequest}
	ErrorInvalidTransition    = ErrorInfo{Code: "INVALID_TRANSITION", Status: http.StatusConflict}
	ErrorInvalidStatus        = ErrorInfo{Code: "INVALID_STATUS", Status: http.StatusBadRequest}
	ErrorInvalidPaymentMethod = ErrorInfo{Code: "INVALID_PAYMENT_METHOD", Status: http.StatusBadRequest}
	ErrorEmptyUpdate          = ErrorInfo{Code: "EMPTY_UPDATE", Status: http.StatusBadRequest}
)

// OrderError is a structured business-rule failure. Product names the item
// involved, when there is one.
type OrderError struct {
	Info    ErrorInfo
	Product string
}

func (e *OrderError) Error() string {
	if e.Product != "" {
		return strings.ToLower(e.Info.Code) + ": " + e.Product
	}
	return strings.ToLower(e.Info.Code)
}

// Is matches sentinels by code, and by family for the retryable variants.
func (e *OrderError) Is(target error) bool {
	t, ok := target.(*OrderError)
	if !ok {
		return false
	}
	return t.Info.Code == e.Info.Code || (e.Info.Family != "" && t.Info.Code == e.Info.Family)
}

// HTTPStatus is the response status for this error.
func (e *OrderError) HTTPStatus() int {
	return e.Info.Status
}

// Message renders the client-facing message in lang.
func (e *OrderError) Message(lang Lang) string {
	return strings.ReplaceAll(Describe("error."+e.Info.Code, lang), "{product}", e.Product)
}

var (
	ErrEmptyCart            = &OrderError{Info: ErrorEmptyCart}
	ErrAddressNotFound      = &OrderError{Info: ErrorAddressNotFound}
	ErrInsufficientStock    = &OrderError{Info: ErrorInsufficientStock}
	ErrStockConflict        = &OrderError{Info: ErrorStockConflict}
	ErrProductUnavailable   = &OrderError{Info: ErrorProductUnavailable}
	ErrInvalidCoupon        = &OrderError{Info: ErrorInvalidCoupon}
	ErrMinOrderNotMet       = &OrderError{Info: ErrorMinOrderNotMet}
	ErrCouponExhausted      = &OrderError{Info: ErrorCouponExhausted}
	ErrCouponConflict       = &OrderError{Info: ErrorCouponConflict}
	ErrOrderNotFound        = &OrderError{Info: ErrorOrderNotFound}
	ErrNotCancellable       = &OrderError{Info: ErrorNotCancellable}
	ErrInvalidTransition    = &OrderError{Info: ErrorInvalidTransition}
	ErrInvalidStatus        = &OrderError{Info: ErrorInvalidStatus}
	ErrInvalidPaymentMethod = &OrderError{Info: ErrorInvalidPaymentMethod}
	ErrEmptyUpdate          = &OrderError{Info: ErrorEmptyUpdate}
)

func insufficientStock(product string) error {
	return &OrderError{Info: ErrorInsufficientStock, Product: product}
}

func stockConflict(product string) error {
	return &OrderError{Info: ErrorStockConflict, Product: product}
}

func productUnavailable(product string) error {
	return &OrderError{Info: ErrorProductUnavailable, Product: product}
}

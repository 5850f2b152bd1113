package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/sol/internal/config"
	"github.com/example/sol/internal/database"
	"github.com/example/sol/internal/models"
	"github.com/example/sol/internal/services"
	"github.com/example/sol/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret",
		Currency:              "EGP",
		OrderNumberPrefix:     "SOL",
		DefaultLanguage:       "ar",
		FreeShippingThreshold: decimal.NewFromInt(1000),
		DefaultShippingCost:   decimal.NewFromInt(50),
		IdempotencyTTL:        time.Hour,
	}
}

func newApp(db *gorm.DB, cfg *config.Config) *fiber.App {
	orders := services.NewOrderService(db, cfg, services.NewNotifier(nil, nil, nil, nil, time.Second))
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(services.Lang(cfg.DefaultLanguage))})
	Register(app, db, cfg, orders, nil)
	return app
}

func token(t *testing.T, cfg *config.Config, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(cfg.JWTSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(t *testing.T, app *fiber.App, method, path, auth, body string, headers ...string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func TestErrorHandlerRendersOrderErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(services.LangArabic)})
	app.Get("/stock", func(c *fiber.Ctx) error {
		return fmt.Errorf("checkout: %w", services.ErrStockConflict)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return gorm.ErrRecordNotFound
	})

	status, env := call(t, app, "GET", "/stock", "", "", "Accept-Language", "en")
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	assert.Equal(t, "STOCK_CONFLICT", env.Error.Code)
	assert.NotEmpty(t, env.Error.Message)

	status, env = call(t, app, "GET", "/boom", "", "", "Accept-Language", "en")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", env.Error.Code)
	assert.Equal(t, "Internal server error", env.Error.Message)
	assert.NotContains(t, env.Error.Message, "pq")

	status, env = call(t, app, "GET", "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, services.Describe("error.INTERNAL", services.LangArabic), env.Error.Message)

	status, env = call(t, app, "GET", "/missing", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", statusCode(400))
	assert.Equal(t, "UNAUTHORIZED", statusCode(401))
	assert.Equal(t, "UNPROCESSABLE_ENTITY", statusCode(422))
}

func TestRoutesRequireAuth(t *testing.T) {
	cfg := testConfig()
	app := newApp(nil, cfg)

	status, env := call(t, app, "GET", "/api/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	customer := token(t, cfg, uuid.New(), utils.RoleCustomer)
	status, env = call(t, app, "GET", "/api/admin/orders", customer, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestCheckoutValidation(t *testing.T) {
	cfg := testConfig()
	app := newApp(nil, cfg)
	customer := token(t, cfg, uuid.New(), utils.RoleCustomer)

	status, _ := call(t, app, "POST", "/api/orders", customer, `{"address_id":"nope","payment_method":"CASH_ON_DELIVERY"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	body := fmt.Sprintf(`{"address_id":"%s","payment_method":"CARD"}`, uuid.New())
	status, env := call(t, app, "POST", "/api/orders", customer, body, "Accept-Language", "en")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PAYMENT_METHOD", env.Error.Code)
	assert.Equal(t, "Unsupported payment method", env.Error.Message)

	status, _ = call(t, app, "POST", "/api/orders/not-a-uuid/cancel", customer, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestShippingQuoteValidation(t *testing.T) {
	app := newApp(nil, testConfig())

	status, _ := call(t, app, "GET", "/api/shipping/quote?governorate_id=x", "", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, "GET", fmt.Sprintf("/api/shipping/quote?governorate_id=%s&order_value=-5", uuid.New()), "", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Connect(dsn)
	require.NoError(t, err)

	cfg := testConfig()
	app := newApp(db, cfg)
	userID := uuid.New()
	customer := token(t, cfg, userID, utils.RoleCustomer)
	admin := token(t, cfg, uuid.New(), utils.RoleAdmin)

	product := &models.Product{Name: "HTTP " + uuid.NewString()[:8], BasePrice: decimal.NewFromInt(120), StockQuantity: 3, IsActive: true}
	require.NoError(t, db.Create(product).Error)

	status, env := call(t, app, "POST", "/api/profile/addresses", customer,
		fmt.Sprintf(`{"full_name":"Mona","street":"Corniche","governorate_id":"%s","is_default":true}`, uuid.New()))
	require.Equal(t, http.StatusCreated, status)
	var address models.UserAddress
	require.NoError(t, json.Unmarshal(env.Data, &address))

	status, _ = call(t, app, "POST", "/api/cart", customer, fmt.Sprintf(`{"product_id":"%s","quantity":2}`, product.ID))
	require.Equal(t, http.StatusCreated, status)

	status, env = call(t, app, "POST", "/api/orders/quote", customer, fmt.Sprintf(`{"address_id":"%s"}`, address.ID))
	require.Equal(t, http.StatusOK, status)
	var quote services.QuoteResult
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.True(t, decimal.NewFromInt(290).Equal(quote.Total))

	status, env = call(t, app, "POST", "/api/orders", customer,
		fmt.Sprintf(`{"address_id":"%s","payment_method":"BANK_WALLET","sender_number":"01000000000"}`, address.ID))
	require.Equal(t, http.StatusCreated, status)
	var created services.CheckoutResult
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, decimal.NewFromInt(290).Equal(created.TotalAmount))
	assert.Equal(t, models.OrderStatusPending, created.OrderStatus)

	status, env = call(t, app, "POST", "/api/orders", customer,
		fmt.Sprintf(`{"address_id":"%s","payment_method":"BANK_WALLET"}`, address.ID))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_CART", env.Error.Code)

	status, env = call(t, app, "GET", "/api/orders/"+created.ID.String(), customer, "")
	require.Equal(t, http.StatusOK, status)
	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Len(t, order.Items, 1)
	assert.Len(t, order.Timeline, 1)

	status, env = call(t, app, "PATCH", "/api/admin/orders/"+created.ID.String(), admin, `{"payment_status":"PAID"}`)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, app, "POST", "/api/orders/"+created.ID.String()+"/cancel", customer, `{"reason":"duplicate"}`, "Accept-Language", "en")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Order cancelled successfully", env.Message)

	status, env = call(t, app, "POST", "/api/orders/cancel", customer, fmt.Sprintf(`{"order_id":"%s"}`, created.ID))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NOT_CANCELLABLE", env.Error.Code)

	status, _ = call(t, app, "GET", "/api/admin/orders/"+created.ID.String()+"/movements", admin, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, app, "GET", fmt.Sprintf("/api/shipping/quote?governorate_id=%s&order_value=1500", uuid.New()), "", "")
	require.Equal(t, http.StatusOK, status)
	var shipping struct {
		ShippingCost decimal.Decimal `json:"shipping_cost"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &shipping))
	assert.True(t, shipping.ShippingCost.IsZero())

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 3, stored.StockQuantity)
}

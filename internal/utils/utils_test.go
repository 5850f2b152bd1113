package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken("secret", userID, RoleAdmin, time.Hour)
	require.NoError(t, err)

	parsed, claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, _, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestTokenDefaultsAndExpiry(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "", time.Hour)
	require.NoError(t, err)
	_, claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, claims.Role)

	expired, err := GenerateToken("secret", uuid.New(), RoleCustomer, -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseToken("secret", expired)
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?page=3&limit=10", nil))
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 3, Limit: 10, Offset: 20}, got)

	_, err = app.Test(httptest.NewRequest("GET", "/?page=-1&limit=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Offset: 0}, got)

	_, err = app.Test(httptest.NewRequest("GET", "/?limit=1000", nil))
	require.NoError(t, err)
	assert.Equal(t, 100, got.Limit)
}

func TestPaginationMeta(t *testing.T) {
	meta := Pagination{Page: 2, Limit: 20, Offset: 20}.Meta(41)
	assert.EqualValues(t, 3, meta["total_pages"])
	assert.EqualValues(t, 41, meta["total_items"])
	assert.EqualValues(t, 0, Pagination{Page: 1, Limit: 20}.Meta(0)["total_pages"])
}

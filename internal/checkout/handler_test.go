package checkout

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Beklenmeyen sunucu hatası"})
		},
	})
	app.Post("/api/checkout", CheckoutHandler(db))
	return app
}

func postCheckout(t *testing.T, app *fiber.App, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCheckoutHandlerStatusMapping(t *testing.T) {
	db := newTestDB(t)
	m := seedMaterial(t, db, "Un", 4, 1)
	p := seedProduct(t, db, "Ekmek", 5)
	addIngredient(t, db, p.ID, m.ID, 2)

	app := newTestApp(db)

	// Boş sepet → 400
	resp := postCheckout(t, app, CheckoutRequest{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Bilinmeyen ürün → 404
	resp = postCheckout(t, app, CheckoutRequest{Lines: []CartLine{{ProductID: 9999, Quantity: 1}}})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Yetersiz stok → 422 + shortfall detayı
	resp = postCheckout(t, app, CheckoutRequest{Lines: []CartLine{{ProductID: p.ID, Quantity: 3}}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var errBody struct {
		Error      string      `json:"error"`
		Shortfalls []Shortfall `json:"shortfalls"`
	}
	require.NoError(t, json.Unmarshal(raw, &errBody))
	require.Len(t, errBody.Shortfalls, 1)
	assert.InDelta(t, 6, errBody.Shortfalls[0].Required, 1e-9)
	assert.InDelta(t, 4, errBody.Shortfalls[0].Available, 1e-9)

	// Başarılı satış → 201 + özet
	resp = postCheckout(t, app, CheckoutRequest{Lines: []CartLine{{ProductID: p.ID, Quantity: 2}}})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	var result Result
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, 2, result.TotalItems)
	assert.Equal(t, 1, result.TransactionCount)
	assert.InDelta(t, 10, result.TotalBill, 1e-9)
}

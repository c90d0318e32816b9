package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/entity"
	service "github.com/Additional-Code/luxe/internal/service/dashboard"
	productsvc "github.com/Additional-Code/luxe/internal/service/product"
	"github.com/Additional-Code/luxe/internal/transport/http/middleware"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

type stubOrders struct{ err error }

func (s stubOrders) ListRecent(context.Context, int) ([]entity.Order, error) {
	return []entity.Order{{ID: 3, Number: "ORD-3"}}, nil
}

func (s stubOrders) Count(context.Context) (int, error) { return 12, s.err }

type stubProducts struct{}

func (stubProducts) List(context.Context, productsvc.ListParams) ([]entity.Product, error) {
	return []entity.Product{{ID: 1, Name: "Silver Ring"}}, nil
}

func (stubProducts) Count(context.Context) (int, error) { return 4, nil }

func newServer(orders service.Orders) *echo.Echo {
	svc := service.NewService(service.Params{Orders: orders, Products: stubProducts{}})
	cfg := config.Config{Admin: config.Admin{CookieName: "admin_auth", Secret: "s3cret"}}
	e := echo.New()
	Register(e, NewHandler(svc), middleware.NewAdmin(cfg, nil))
	return e
}

func get(e *echo.Echo, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_SummaryRequiresAdmin(t *testing.T) {
	e := newServer(stubOrders{})

	assert.Equal(t, http.StatusUnauthorized, get(e, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(e, &http.Cookie{Name: "admin_auth", Value: "guess"}).Code)

	rec := get(e, &http.Cookie{Name: "admin_auth", Value: "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Success bool           `json:"success"`
		Data    service.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, 12, out.Data.OrdersCount)
	assert.Equal(t, 4, out.Data.ProductsCount)
	require.Len(t, out.Data.RecentOrders, 1)
	assert.Equal(t, "ORD-3", out.Data.RecentOrders[0].Number)
	require.Len(t, out.Data.Products, 1)
}

func TestHandler_SummaryStoreFailure(t *testing.T) {
	e := newServer(stubOrders{err: errorbank.FromStore(errors.New("connection refused"))})

	rec := get(e, &http.Cookie{Name: "admin_auth", Value: "s3cret"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

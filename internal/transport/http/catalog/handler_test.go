package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/luxe/pkg/errorbank"
)

func queryContext(query string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/catalog/products?"+query, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestListParams(t *testing.T) {
	params, err := listParams(queryContext("sort=price-asc&limit=5&category=4&featured=true"))
	require.NoError(t, err)
	assert.Equal(t, "price-asc", params.Sort)
	assert.Equal(t, 5, params.Limit)
	require.NotNil(t, params.CategoryID)
	assert.Equal(t, int64(4), *params.CategoryID)
	assert.True(t, params.Featured)
	assert.False(t, params.Trending)
	assert.False(t, params.IncludeInactive)
}

func TestListParams_CategorySlug(t *testing.T) {
	params, err := listParams(queryContext("category=rings"))
	require.NoError(t, err)
	assert.Nil(t, params.CategoryID)
	assert.Equal(t, "rings", params.CategorySlug)
}

func TestListParams_Invalid(t *testing.T) {
	_, err := listParams(queryContext("limit=ten&trending=maybe"))
	require.Error(t, err)
	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
	assert.Contains(t, appErr.Details(), "limit")
	assert.Contains(t, appErr.Details(), "trending")
}

package product

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	service "github.com/Additional-Code/luxe/internal/service/product"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

func jsonContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func multipartContext(t *testing.T, fields map[string]string, files map[string]string) echo.Context {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/products/1", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func withoutUploads(in service.Input) service.Input {
	in.Uploads = nil
	return in
}

func TestParseInput_JSONAndMultipartConverge(t *testing.T) {
	fromJSON, err := ParseInput(jsonContext(`{
		"name": "Silver Ring",
		"slug": "silver-ring",
		"description": "925 silver",
		"price": 49.5,
		"compare_at_price": "60",
		"category_id": 3,
		"stock": "12",
		"is_active": true,
		"is_featured": "true",
		"is_trending": false,
		"existingImages": ["a.webp", "b.webp"]
	}`))
	require.NoError(t, err)

	fromForm, err := ParseInput(multipartContext(t, map[string]string{
		"name":             "Silver Ring",
		"slug":             "silver-ring",
		"description":      "925 silver",
		"price":            "49.5",
		"compare_at_price": "60",
		"category_id":      "3",
		"stock":            "12",
		"is_active":        "true",
		"is_featured":      "true",
		"is_trending":      "false",
		"existingImages":   `["a.webp","b.webp"]`,
	}, nil))
	require.NoError(t, err)

	assert.Equal(t, withoutUploads(fromJSON), withoutUploads(fromForm))
	assert.True(t, decimal.RequireFromString("49.5").Equal(fromJSON.Price))
	require.NotNil(t, fromJSON.CompareAtPrice)
	assert.True(t, decimal.NewFromInt(60).Equal(*fromJSON.CompareAtPrice))
	require.NotNil(t, fromJSON.CategoryID)
	assert.Equal(t, int64(3), *fromJSON.CategoryID)
	assert.Equal(t, 12, fromJSON.Stock)
	assert.True(t, fromJSON.IsActive)
	require.NotNil(t, fromJSON.IsFeatured)
	assert.True(t, *fromJSON.IsFeatured)
	require.NotNil(t, fromJSON.IsTrending)
	assert.False(t, *fromJSON.IsTrending)
	assert.Equal(t, []string{"a.webp", "b.webp"}, fromJSON.ExistingImages)
}

func TestParseInput_EmptyValues(t *testing.T) {
	in, err := ParseInput(jsonContext(`{"name":"Ring","slug":"ring","price":"","stock":"","compare_at_price":"","category_id":null,"is_active":"yes"}`))
	require.NoError(t, err)

	assert.True(t, in.Price.IsZero())
	assert.Zero(t, in.Stock)
	assert.Nil(t, in.CompareAtPrice)
	assert.Nil(t, in.CategoryID)
	assert.False(t, in.IsActive)
	assert.Nil(t, in.ExistingImages)
}

func TestParseInput_AbsentHighlightFlagsStayUnset(t *testing.T) {
	fromJSON, err := ParseInput(jsonContext(`{"name":"Ring","slug":"ring","is_active":true,"is_trending":null}`))
	require.NoError(t, err)
	assert.Nil(t, fromJSON.IsFeatured)
	assert.Nil(t, fromJSON.IsTrending)

	fromForm, err := ParseInput(multipartContext(t, map[string]string{"name": "Ring", "slug": "ring", "is_active": "true"}, nil))
	require.NoError(t, err)
	assert.Nil(t, fromForm.IsFeatured)
	assert.Nil(t, fromForm.IsTrending)

	withFlag, err := ParseInput(multipartContext(t, map[string]string{"name": "Ring", "slug": "ring", "is_featured": ""}, nil))
	require.NoError(t, err)
	require.NotNil(t, withFlag.IsFeatured)
	assert.False(t, *withFlag.IsFeatured)
	assert.Nil(t, withFlag.IsTrending)
}

func TestParseInput_StockBounds(t *testing.T) {
	in, err := ParseInput(jsonContext(`{"name":"Ring","slug":"ring","stock":7.9}`))
	require.NoError(t, err)
	assert.Equal(t, 7, in.Stock)

	for _, body := range []string{
		`{"stock":"99999999999999999999999"}`,
		`{"stock":-99999999999999999999999}`,
	} {
		_, err := ParseInput(jsonContext(body))
		require.Error(t, err, body)
		appErr := errorbank.From(err)
		assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
		assert.Equal(t, "is out of range", appErr.Details()["stock"])
	}
}

func TestParseInput_MultipartUploads(t *testing.T) {
	c := multipartContext(t, map[string]string{"name": "Ring", "slug": "ring"}, map[string]string{"front.png": "pixels"})

	in, err := ParseInput(c)
	require.NoError(t, err)
	require.Len(t, in.Uploads, 1)
	assert.Equal(t, "front.png", in.Uploads[0].Filename)

	rc, err := in.Uploads[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestParseInput_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		ctx   func(t *testing.T) echo.Context
		field string
	}{
		{"bad price", func(*testing.T) echo.Context { return jsonContext(`{"price":"abc"}`) }, "price"},
		{"bad stock", func(*testing.T) echo.Context { return jsonContext(`{"stock":"many"}`) }, "stock"},
		{"bad category", func(*testing.T) echo.Context { return jsonContext(`{"category_id":"rings"}`) }, "category_id"},
		{"bad existing images", func(t *testing.T) echo.Context {
			return multipartContext(t, map[string]string{"existingImages": "a.webp"}, nil)
		}, "existingImages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput(tt.ctx(t))
			require.Error(t, err)
			appErr := errorbank.From(err)
			assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
			assert.Contains(t, appErr.Details(), tt.field)
		})
	}
}

func TestParseInput_MalformedJSON(t *testing.T) {
	_, err := ParseInput(jsonContext(`{"name":`))
	assert.True(t, errorbank.Is(err, errorbank.KindBadRequest))
}

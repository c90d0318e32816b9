package product

import (
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Additional-Code/luxe/internal/dto"
	service "github.com/Additional-Code/luxe/internal/service/product"
	"github.com/Additional-Code/luxe/pkg/errorbank"
)

const (
	imagesField   = "images"
	existingField = "existingImages"
)

var formFields = []string{
	"name", "slug", "description", "price", "compare_at_price",
	"category_id", "stock", "is_active", "is_featured", "is_trending",
}

// ParseInput reads a product body from JSON or from a (multipart) form.
// Both paths produce the same Input for the same values.
func ParseInput(c echo.Context) (service.Input, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		return parseJSON(c)
	}
	return parseForm(c)
}

func parseJSON(c echo.Context) (service.Input, error) {
	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return service.Input{}, errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	return inputFromFields(req.Fields(), req.ExistingImages)
}

func parseForm(c echo.Context) (service.Input, error) {
	values, err := c.FormParams()
	if err != nil {
		return service.Input{}, errorbank.BadRequest("invalid form", errorbank.WithCause(err))
	}

	fields := make(map[string]string, len(formFields))
	for _, name := range formFields {
		if values.Has(name) {
			fields[name] = values.Get(name)
		}
	}

	var existing []string
	if raw := strings.TrimSpace(values.Get(existingField)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return service.Input{}, errorbank.BadRequest("invalid existingImages", errorbank.WithCause(err),
				errorbank.WithDetail(existingField, "must be a JSON array of strings"))
		}
	}

	in, err := inputFromFields(fields, existing)
	if err != nil {
		return in, err
	}

	if form := c.Request().MultipartForm; form != nil {
		for _, fh := range form.File[imagesField] {
			in.Uploads = append(in.Uploads, upload(fh))
		}
	}
	return in, nil
}

func upload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// inputFromFields coerces form-style text values. Empty price and stock are
// zero; empty compare_at_price and category_id are null; flags are true only
// for "true". Highlight flags without a key stay unset.
func inputFromFields(fields map[string]string, existing []string) (service.Input, error) {
	details := map[string]any{}
	in := service.Input{
		Name:        fields["name"],
		Slug:        fields["slug"],
		Description: fields["description"],
		IsActive:    isTrue(fields["is_active"]),
		IsFeatured:  optionalFlag(fields, "is_featured"),
		IsTrending:  optionalFlag(fields, "is_trending"),
	}

	if v, ok := number(fields["price"]); ok {
		in.Price = v
	} else {
		details["price"] = "must be a number"
	}

	if raw := strings.TrimSpace(fields["compare_at_price"]); raw != "" {
		if v, ok := number(raw); ok {
			in.CompareAtPrice = &v
		} else {
			details["compare_at_price"] = "must be a number"
		}
	}

	if raw := strings.TrimSpace(fields["category_id"]); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			details["category_id"] = "must be an integer"
		} else {
			in.CategoryID = &id
		}
	}

	if v, ok := number(fields["stock"]); !ok {
		details["stock"] = "must be a number"
	} else if stock, ok := stockValue(v); ok {
		in.Stock = stock
	} else {
		details["stock"] = "is out of range"
	}

	if len(existing) > 0 {
		in.ExistingImages = existing
	}

	if len(details) > 0 {
		return service.Input{}, errorbank.BadRequest("invalid product fields", errorbank.WithDetails(details))
	}
	return in, nil
}

func number(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, true
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// stockValue truncates v to an int, rejecting values outside the int range.
func stockValue(v decimal.Decimal) (int, bool) {
	whole := v.Truncate(0)
	if whole.LessThan(decimal.NewFromInt(math.MinInt)) || whole.GreaterThan(decimal.NewFromInt(math.MaxInt)) {
		return 0, false
	}
	return int(whole.IntPart()), true
}

func optionalFlag(fields map[string]string, name string) *bool {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	v := isTrue(raw)
	return &v
}

func isTrue(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

package dto

// ProductRequest is the JSON product body. Scalars accept numbers, booleans
// or strings so JSON and multipart clients can send the same values. The
// highlight flags stay nil when absent or null.
type ProductRequest struct {
	Name           Scalar   `json:"name"`
	Slug           Scalar   `json:"slug"`
	Description    Scalar   `json:"description"`
	Price          Scalar   `json:"price"`
	CompareAtPrice Scalar   `json:"compare_at_price"`
	CategoryID     Scalar   `json:"category_id"`
	Stock          Scalar   `json:"stock"`
	IsActive       Scalar   `json:"is_active"`
	IsFeatured     *Scalar  `json:"is_featured"`
	IsTrending     *Scalar  `json:"is_trending"`
	ExistingImages []string `json:"existingImages"`
}

// Fields flattens the body into form-style values keyed by field name.
// Absent highlight flags have no key.
func (r ProductRequest) Fields() map[string]string {
	fields := map[string]string{
		"name":             r.Name.String(),
		"slug":             r.Slug.String(),
		"description":      r.Description.String(),
		"price":            r.Price.String(),
		"compare_at_price": r.CompareAtPrice.String(),
		"category_id":      r.CategoryID.String(),
		"stock":            r.Stock.String(),
		"is_active":        r.IsActive.String(),
	}
	if r.IsFeatured != nil {
		fields["is_featured"] = r.IsFeatured.String()
	}
	if r.IsTrending != nil {
		fields["is_trending"] = r.IsTrending.String()
	}
	return fields
}

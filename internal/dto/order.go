package dto

// StatusUpdateRequest is the admin order status change body.
type StatusUpdateRequest struct {
	OrderID Scalar `json:"orderId"`
	Status  string `json:"status"`
}

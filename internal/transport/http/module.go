package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/Additional-Code/luxe/internal/transport/http/catalog"
	contacttransport "github.com/Additional-Code/luxe/internal/transport/http/contact"
	dashboardtransport "github.com/Additional-Code/luxe/internal/transport/http/dashboard"
	"github.com/Additional-Code/luxe/internal/transport/http/middleware"
	ordertransport "github.com/Additional-Code/luxe/internal/transport/http/order"
	producttransport "github.com/Additional-Code/luxe/internal/transport/http/product"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	fx.Provide(middleware.NewAdmin),
	catalogtransport.Module,
	contacttransport.Module,
	dashboardtransport.Module,
	ordertransport.Module,
	producttransport.Module,
)

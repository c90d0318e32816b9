package dashboard

import (
	"go.uber.org/fx"

	ordersvc "github.com/Additional-Code/luxe/internal/service/order"
	productsvc "github.com/Additional-Code/luxe/internal/service/product"
)

// Module provides the dashboard service to Fx.
var Module = fx.Options(
	fx.Provide(
		func(s *ordersvc.Service) Orders { return s },
		func(s *productsvc.Service) Products { return s },
		NewService,
	),
)

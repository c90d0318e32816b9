package order

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/luxe/internal/notify"
	repo "github.com/Additional-Code/luxe/internal/repository/order"
	productrepo "github.com/Additional-Code/luxe/internal/repository/product"
)

// Module provides the order service to Fx.
var Module = fx.Options(
	fx.Provide(
		func(r *repo.Repository) Repository { return r },
		func(r *productrepo.Repository) Catalog { return r },
		func(t *notify.Telegram) Notifier { return t },
		NewService,
	),
)

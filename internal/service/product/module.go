package product

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/luxe/internal/media"
	categoryrepo "github.com/Additional-Code/luxe/internal/repository/category"
	repo "github.com/Additional-Code/luxe/internal/repository/product"
)

// Module provides the product service to Fx.
var Module = fx.Options(
	fx.Provide(
		func(r *repo.Repository) Repository { return r },
		func(r *categoryrepo.Repository) CategoryRepository { return r },
		func(u *media.Uploader) ImageSaver { return u },
		func(p *media.Previewer) Previewer { return p },
		NewService,
	),
)

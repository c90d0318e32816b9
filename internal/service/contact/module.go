package contact

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/luxe/internal/notify"
)

// Module provides the contact service to Fx.
var Module = fx.Options(
	fx.Provide(
		func(t *notify.Telegram) Notifier { return t },
		NewService,
	),
)

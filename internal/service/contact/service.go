package contact

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/notify"
	"github.com/Additional-Code/luxe/pkg/errorbank"
	"github.com/Additional-Code/luxe/pkg/validation"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/luxe/service/contact")

// Notifier delivers a customer message.
type Notifier interface {
	NotifyContact(ctx context.Context, msg notify.ContactMessage) error
}

// Input is the "send message" form.
type Input struct {
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Message string `json:"message" validate:"required"`
}

func (in *Input) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
}

// Service forwards storefront messages to the shop owner.
type Service struct {
	notifier Notifier
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Notifier Notifier
	Logger   *zap.Logger `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{notifier: p.Notifier, logger: logger}
}

// Send validates the form and delivers it before returning. Nothing is
// stored, so a failed delivery is reported to the caller.
func (s *Service) Send(ctx context.Context, in Input) error {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return err
	}

	ctx, span := serviceTracer.Start(ctx, "ContactService.Send")
	defer span.End()

	err := s.notifier.NotifyContact(ctx, notify.ContactMessage{
		Name:    in.Name,
		Contact: in.Contact,
		Email:   in.Email,
		Message: in.Message,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		s.logger.Warn("contact message not delivered", zap.Error(err))
		return errorbank.Internal("failed to deliver message", errorbank.WithCause(err))
	}
	return nil
}

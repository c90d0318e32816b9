package media

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var mediaTracer = otel.Tracer("github.com/Additional-Code/luxe/media")

// Uploader transcodes uploads and writes them with their variants.
type Uploader struct {
	store      Store
	transcoder *Transcoder
	logger     *zap.Logger
	newKey     func() string
}

// NewUploader wires an uploader.
func NewUploader(store Store, transcoder *Transcoder, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		store:      store,
		transcoder: transcoder,
		logger:     logger,
		newKey:     func() string { return uuid.NewString() + Extension },
	}
}

// Save transcodes r, stores "<uuid>.webp" plus every variant, and returns
// the public URL of the full-size image.
func (u *Uploader) Save(ctx context.Context, r io.Reader) (string, error) {
	ctx, span := mediaTracer.Start(ctx, "Uploader.Save")
	defer span.End()

	encoded, err := u.transcoder.Transcode(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcode failed")
		return "", err
	}

	key := u.newKey()
	span.SetAttributes(attribute.String("media.key", key), attribute.Int("media.bytes", len(encoded.Original)))

	if err := u.store.Put(ctx, key, encoded.Original, ContentType); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return "", fmt.Errorf("store image: %w", err)
	}
	for _, v := range encoded.Variants {
		if err := u.store.Put(ctx, VariantKey(key, v.Width), v.Data, ContentType); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store variant failed")
			return "", fmt.Errorf("store image variant %d: %w", v.Width, err)
		}
	}

	u.logger.Debug("image stored", zap.String("key", key), zap.Int("variants", len(encoded.Variants)))
	return u.store.URL(key), nil
}

package media

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	xwebp "golang.org/x/image/webp"

	"github.com/Additional-Code/luxe/internal/config"
)

// ContentType is the MIME type of every stored image.
const ContentType = "image/webp"

// Extension is appended to every stored key.
const Extension = ".webp"

// ErrUnsupportedImage is returned when an upload cannot be decoded.
var ErrUnsupportedImage = errors.New("unsupported image")

// Variant is a resized copy of an image.
type Variant struct {
	Width int
	Data  []byte
}

// Encoded holds the WebP original and its size variants.
type Encoded struct {
	Original []byte
	Variants []Variant
}

// Transcoder converts uploads to lossy WebP.
type Transcoder struct {
	quality float32
	widths  []int
}

// NewTranscoder reads quality and variant widths from configuration.
func NewTranscoder(cfg config.Config) *Transcoder {
	return &Transcoder{
		quality: float32(cfg.Images.Quality),
		widths:  append([]int(nil), cfg.Images.Variants...),
	}
}

// Widths returns the configured variant widths.
func (t *Transcoder) Widths() []int { return append([]int(nil), t.widths...) }

// Transcode decodes r (jpeg, png, gif or webp) and re-encodes it. Variants
// never upscale: an image narrower than the width is encoded as-is.
func (t *Transcoder) Transcode(r io.Reader) (*Encoded, error) {
	img, err := decode(r)
	if err != nil {
		return nil, err
	}

	original, err := t.encode(img)
	if err != nil {
		return nil, err
	}
	out := &Encoded{Original: original}

	srcWidth := img.Bounds().Dx()
	for _, w := range t.widths {
		data := original
		if srcWidth > w {
			resized := imaging.Resize(img, w, 0, imaging.Lanczos)
			if data, err = t.encode(resized); err != nil {
				return nil, err
			}
		}
		out.Variants = append(out.Variants, Variant{Width: w, Data: data})
	}
	return out, nil
}

func (t *Transcoder) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	header, _ := br.Peek(12)
	if len(header) == 12 && string(header[0:4]) == "RIFF" && string(header[8:12]) == "WEBP" {
		img, err := xwebp.Decode(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	}
	img, _, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

// VariantKey names the width-w variant of key: "<name>_<w>.webp". A key that
// already names a variant is mapped to its sibling.
func VariantKey(key string, w int) string {
	return baseName(key) + "_" + strconv.Itoa(w) + Extension
}

func baseName(key string) string {
	base := strings.TrimSuffix(key, Extension)
	i := strings.LastIndexByte(base, '_')
	if i < 0 || i == len(base)-1 {
		return base
	}
	if _, err := strconv.Atoi(base[i+1:]); err != nil {
		return base
	}
	return base[:i]
}

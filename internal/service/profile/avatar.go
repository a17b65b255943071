package profile

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/granjalink/farm-backend-go/internal/domain/profile"
)

const (
	avatarSide    = 256
	avatarQuality = 85
)

// normalizeAvatar decodes a JPEG or PNG, crops it to a centered square, scales
// it down to avatarSide and re-encodes it as JPEG. Metadata is dropped.
func normalizeAvatar(r io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(raw) > profile.MaxAvatarBytes {
		return nil, profile.ErrAvatarTooLarge
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", profile.ErrInvalidAvatar, err)
	}
	if format != "jpeg" && format != "png" {
		return nil, profile.ErrInvalidAvatar
	}

	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, side, side).Add(image.Pt(
		b.Min.X+(b.Dx()-side)/2,
		b.Min.Y+(b.Dy()-side)/2,
	))

	out := min(side, avatarSide)
	dst := image.NewRGBA(image.Rect(0, 0, out, out))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: avatarQuality}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return &buf, nil
}

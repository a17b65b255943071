package profile

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granjalink/farm-backend-go/internal/domain/profile"
)

type stubProfileRepository struct {
	profile.ProfileRepository
	stored  map[string]profile.Profile
	updated *profile.UpdateProfileRequest
}

func (s *stubProfileRepository) GetByID(_ context.Context, id string) (profile.Profile, error) {
	p, ok := s.stored[id]
	if !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	return p, nil
}

func (s *stubProfileRepository) Update(_ context.Context, id string, req profile.UpdateProfileRequest) (profile.Profile, error) {
	s.updated = &req
	p := s.stored[id]
	p.FullName = req.FullName
	p.AvatarURL = req.AvatarURL
	s.stored[id] = p
	return p, nil
}

// memStorage keeps uploads in memory under "mem://" URLs.
type memStorage struct {
	files map[string][]byte
}

func (m *memStorage) Upload(_ context.Context, file io.Reader, key string, _ string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	m.files[key] = data
	return key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.files, key)
	return nil
}

func (m *memStorage) URL(key string) string { return "mem://" + key }

func (m *memStorage) Key(url string) (string, bool) { return strings.CutPrefix(url, "mem://") }

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func newTestService() (*stubProfileRepository, *memStorage, profile.ProfileService) {
	repo := &stubProfileRepository{stored: map[string]profile.Profile{
		"u1": {ID: "u1", FullName: "Ana", Role: profile.RoleEmployee},
	}}
	files := &memStorage{files: map[string][]byte{}}
	return repo, files, NewProfileService(repo, files)
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newTestService()

	p, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.FullName)

	_, err = svc.Get(ctx, "ghost")
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)

	empty := ""
	p, err = svc.Update(ctx, "u1", profile.UpdateProfileRequest{FullName: "Ana María", AvatarURL: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", p.FullName)
	assert.Nil(t, repo.updated.AvatarURL)
	assert.Equal(t, profile.RoleEmployee, p.Role)
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()
	repo, files, svc := newTestService()

	first, err := svc.UploadAvatar(ctx, "u1", pngOf(t, 600, 400))
	require.NoError(t, err)
	require.NotNil(t, first.AvatarURL)
	assert.Equal(t, "Ana", first.FullName)

	key, ok := files.Key(*first.AvatarURL)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(key, "avatars/u1/"))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(files.files[key]))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, avatarSide, cfg.Width)
	assert.Equal(t, avatarSide, cfg.Height)

	second, err := svc.UploadAvatar(ctx, "u1", pngOf(t, 64, 80))
	require.NoError(t, err)
	assert.NotEqual(t, *first.AvatarURL, *second.AvatarURL)
	assert.Len(t, files.files, 1, "previous avatar is removed")
	assert.Equal(t, second.AvatarURL, repo.stored["u1"].AvatarURL)

	small, _ := files.Key(*second.AvatarURL)
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(files.files[small]))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width, "small images are not upscaled")
}

func TestUploadAvatar_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("not an image", func(t *testing.T) {
		_, files, svc := newTestService()
		_, err := svc.UploadAvatar(ctx, "u1", strings.NewReader("%PDF-1.7"))
		assert.ErrorIs(t, err, profile.ErrInvalidAvatar)
		assert.Empty(t, files.files)
	})

	t.Run("too large", func(t *testing.T) {
		_, _, svc := newTestService()
		_, err := svc.UploadAvatar(ctx, "u1", bytes.NewReader(make([]byte, profile.MaxAvatarBytes+1)))
		assert.ErrorIs(t, err, profile.ErrAvatarTooLarge)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, svc := newTestService()
		_, err := svc.UploadAvatar(ctx, "ghost", pngOf(t, 10, 10))
		assert.ErrorIs(t, err, profile.ErrProfileNotFound)
	})
}

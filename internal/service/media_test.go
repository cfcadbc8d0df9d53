package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/prerr"
)

type fakeImages struct {
	images []*model.PropertyImage
}

func (f *fakeImages) CountByProperty(_ context.Context, propertyID int64) (int, error) {
	n := 0
	for _, img := range f.images {
		if img.PropertyID == propertyID {
			n++
		}
	}
	return n, nil
}

func (f *fakeImages) Append(_ context.Context, img *model.PropertyImage) error {
	img.ImageID = int64(len(f.images) + 1)
	f.images = append(f.images, img)
	return nil
}

func (f *fakeImages) Get(_ context.Context, propertyID, imageID int64) (*model.PropertyImage, error) {
	for _, img := range f.images {
		if img.ImageID == imageID && img.PropertyID == propertyID {
			return img, nil
		}
	}
	return nil, prerr.ErrNotFound
}

func (f *fakeImages) Delete(_ context.Context, imageID int64) error {
	for i, img := range f.images {
		if img.ImageID == imageID {
			f.images = append(f.images[:i], f.images[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeStorage struct {
	uploaded map[string]bool
	deleted  []string
}

func (f *fakeStorage) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?signature=x", nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	return f.uploaded[key], nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

const mediaRef = "01HX3Q8Z9V7K2M4N6P8R0T2W4Y"

func newTestMedia() (*Media, *fakeImages, *fakeStorage) {
	props := newFakeProperties(&model.Property{
		PropertyID: 1,
		Reference:  mediaRef,
		AgentID:    testAgentID,
		Status:     constant.PropertyStatusActive,
	})
	svc, _ := newTestProperty(props)
	images := &fakeImages{}
	storage := &fakeStorage{uploaded: map[string]bool{}}
	return &Media{
		Properties:    svc,
		Images:        images,
		Storage:       storage,
		PublicBaseURL: "https://media.properly.homes",
	}, images, storage
}

func TestUploadURL(t *testing.T) {
	ctx := context.Background()
	media, _, _ := newTestMedia()

	res, err := media.UploadURL(ctx, agent(), mediaRef, &types.ImageUploadURLRequest{ContentType: "image/webp", Filename: "terrace.webp"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "properties/"+mediaRef+"/"))
	assert.True(t, strings.HasSuffix(res.Key, ".webp"))
	assert.Equal(t, "https://media.properly.homes/"+res.Key, res.PublicURL)
	assert.Equal(t, constant.ImageUploadExpiry*60, res.ExpiresIn)

	_, err = media.UploadURL(ctx, agent(), mediaRef, &types.ImageUploadURLRequest{ContentType: "image/gif", Filename: "x.gif"})
	assert.ErrorIs(t, err, prerr.ErrInvalidReq)

	stranger := &authn.Principal{UserID: testAgentID + 1, Role: constant.RoleAgent}
	_, err = media.UploadURL(ctx, stranger, mediaRef, &types.ImageUploadURLRequest{ContentType: "image/png", Filename: "x.png"})
	assert.ErrorIs(t, err, prerr.ErrForbidden)
}

func TestUploadURLWithoutStorage(t *testing.T) {
	media, _, _ := newTestMedia()
	media.Storage = nil

	_, err := media.UploadURL(context.Background(), agent(), mediaRef, &types.ImageUploadURLRequest{ContentType: "image/png", Filename: "x.png"})
	assert.ErrorIs(t, err, ErrMediaUnavailable)
}

func TestRegisterImage(t *testing.T) {
	ctx := context.Background()
	media, images, storage := newTestMedia()
	key := "properties/" + mediaRef + "/a.jpg"

	t.Run("object not uploaded", func(t *testing.T) {
		_, err := media.Register(ctx, agent(), mediaRef, key)
		assert.ErrorIs(t, err, prerr.ErrInvalidReq)
	})

	t.Run("foreign key", func(t *testing.T) {
		_, err := media.Register(ctx, agent(), mediaRef, "properties/OTHER/a.jpg")
		assert.ErrorIs(t, err, prerr.ErrInvalidReq)
	})

	t.Run("registered", func(t *testing.T) {
		storage.uploaded[key] = true
		img, err := media.Register(ctx, agent(), mediaRef, key)
		require.NoError(t, err)
		assert.Equal(t, "https://media.properly.homes/"+key, img.URL)
		assert.Len(t, images.images, 1)
	})

	t.Run("limit reached", func(t *testing.T) {
		for len(images.images) < constant.MaxListingImages {
			require.NoError(t, images.Append(ctx, &model.PropertyImage{PropertyID: 1}))
		}
		_, err := media.Register(ctx, agent(), mediaRef, key)
		assert.ErrorIs(t, err, prerr.ErrInvalidReq)
	})
}

func TestRemoveImageDeletesObject(t *testing.T) {
	ctx := context.Background()
	media, images, storage := newTestMedia()
	key := "properties/" + mediaRef + "/a.jpg"
	require.NoError(t, images.Append(ctx, &model.PropertyImage{PropertyID: 1, ObjectKey: key}))

	require.NoError(t, media.Remove(ctx, agent(), mediaRef, 1))
	assert.Empty(t, images.images)
	assert.Equal(t, []string{key}, storage.deleted)
}

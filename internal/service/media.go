package service

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

var ErrMediaUnavailable = prerr.New(fiber.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "image uploads are not configured")

// ObjectStorage is where listing images are uploaded to by clients.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type S3Storage struct {
	Client  *s3.Client
	Presign *s3.PresignClient
	Bucket  string
}

// NewS3Storage returns nil when no bucket is configured.
func NewS3Storage(conf *appconfig.Config, client *s3.Client) *S3Storage {
	if client == nil {
		return nil
	}
	return &S3Storage{
		Client:  client,
		Presign: s3.NewPresignClient(client),
		Bucket:  conf.S3Bucket,
	}
}

func (s *S3Storage) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	req, err := s.Presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
		return false, nil
	}
	return false, err
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	return err
}

type Media struct {
	Properties *Property
	Images     PropertyImageStore
	// Storage is nil when uploads are disabled.
	Storage ObjectStorage

	PublicBaseURL string
}

func NewMedia(conf *appconfig.Config, properties *Property, images *repo.PropertyImage, storage *S3Storage) *Media {
	m := &Media{
		Properties:    properties,
		Images:        images,
		PublicBaseURL: strings.TrimSuffix(conf.MediaPublicBaseURL, "/"),
	}
	// keep the interface nil rather than holding a typed nil pointer
	if storage != nil {
		m.Storage = storage
	}
	return m
}

func imageKeyPrefix(ref string) string {
	return "properties/" + ref + "/"
}

func (s *Media) ensureRoom(ctx context.Context, propertyID int64) error {
	n, err := s.Images.CountByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	if n >= constant.MaxListingImages {
		return prerr.ErrInvalidReq.Msg("a listing holds at most %d images", constant.MaxListingImages)
	}
	return nil
}

func (s *Media) UploadURL(ctx context.Context, principal *authn.Principal, ref string, req *types.ImageUploadURLRequest) (*types.ImageUploadURLResponse, error) {
	if s.Storage == nil {
		return nil, ErrMediaUnavailable
	}
	ext, ok := constant.AllowedImageContentTypes[req.ContentType]
	if !ok {
		return nil, prerr.ErrInvalidReq.Msg("content type %q is not allowed", req.ContentType)
	}

	p, err := s.Properties.loadOwned(ctx, ref, principal, false)
	if err != nil {
		return nil, err
	}
	if err := s.ensureRoom(ctx, p.PropertyID); err != nil {
		return nil, err
	}

	key := imageKeyPrefix(p.Reference) + strings.ToLower(NewReference()) + ext
	expires := constant.ImageUploadExpiry * time.Minute
	url, err := s.Storage.PresignPut(ctx, key, req.ContentType, expires)
	if err != nil {
		return nil, err
	}

	return &types.ImageUploadURLResponse{
		UploadURL: url,
		Key:       key,
		PublicURL: s.PublicBaseURL + "/" + key,
		ExpiresIn: int(expires.Seconds()),
	}, nil
}

// Register attaches an uploaded object to the listing, after the existing images.
func (s *Media) Register(ctx context.Context, principal *authn.Principal, ref, key string) (*model.PropertyImage, error) {
	p, err := s.Properties.loadOwned(ctx, ref, principal, false)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(key, imageKeyPrefix(p.Reference)) || strings.Contains(key, "..") {
		return nil, prerr.ErrInvalidReq.Msg("key does not belong to this listing")
	}
	if err := s.ensureRoom(ctx, p.PropertyID); err != nil {
		return nil, err
	}
	if s.Storage != nil {
		ok, err := s.Storage.Exists(ctx, key)
		if err != nil {
			return nil, errors.Wrap(err, "check uploaded object")
		}
		if !ok {
			return nil, prerr.ErrInvalidReq.Msg("no object was uploaded under this key")
		}
	}

	img := &model.PropertyImage{
		PropertyID: p.PropertyID,
		ObjectKey:  key,
		URL:        s.PublicBaseURL + "/" + key,
	}
	if err := s.Images.Append(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Media) Remove(ctx context.Context, principal *authn.Principal, ref string, imageID int64) error {
	p, err := s.Properties.loadOwned(ctx, ref, principal, true)
	if err != nil {
		return err
	}
	img, err := s.Images.Get(ctx, p.PropertyID, imageID)
	if err != nil {
		return err
	}
	if err := s.Images.Delete(ctx, img.ImageID); err != nil {
		return err
	}
	if s.Storage != nil {
		if err := s.Storage.Delete(ctx, img.ObjectKey); err != nil {
			log.Warn().Err(err).Str("evt.name", "media.delete.failed").Str("key", img.ObjectKey).Msg("failed to delete object; it is orphaned")
		}
	}
	return nil
}

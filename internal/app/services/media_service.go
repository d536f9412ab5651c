package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
	"github.com/yigit/campusportal/internal/pkg/httpclient"
)

// MediaService proxies uploads to the media collaborator
type MediaService interface {
	Upload(ctx context.Context, filename string, content io.Reader) (dto.UploadedMedia, error)
}

type mediaServiceImpl struct {
	media        *httpclient.Client
	imageBaseURL string
	normalizer   *apperrors.Normalizer
	logger       zerolog.Logger
}

// NewMediaService creates a new MediaService. Display URLs are imageBaseURL
// joined with the id the upload returns.
func NewMediaService(media *httpclient.Client, imageBaseURL string, normalizer *apperrors.Normalizer, logger zerolog.Logger) MediaService {
	return &mediaServiceImpl{
		media:        media,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		normalizer:   normalizer,
		logger:       logger,
	}
}

func (s *mediaServiceImpl) Upload(ctx context.Context, filename string, content io.Reader) (dto.UploadedMedia, error) {
	body, err := httpclient.NewMultipartBody(nil, httpclient.FormFile{
		Field:    "file",
		Filename: filename,
		Content:  content,
	})
	if err != nil {
		return dto.UploadedMedia{}, s.normalizer.Handle(err)
	}

	resp, err := s.media.Post(context.WithoutCancel(ctx), "/upload", body)
	if err != nil {
		return dto.UploadedMedia{}, settle(ctx, s.normalizer, err)
	}

	var result dto.MediaUploadResponse
	if err := resp.Decode(&result); err != nil {
		return dto.UploadedMedia{}, settle(ctx, s.normalizer, err)
	}
	if result.Result == "" {
		return dto.UploadedMedia{}, s.normalizer.Handle(errors.New("upload response carried no image id"))
	}

	s.logger.Info().Str("filename", filename).Str("imageId", result.Result).Msg("Media uploaded")
	return dto.UploadedMedia{
		ImageID:    result.Result,
		DisplayURL: s.imageBaseURL + "/" + result.Result,
	}, nil
}

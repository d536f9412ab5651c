package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/session"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
	"github.com/yigit/campusportal/internal/pkg/httpclient"
	"github.com/yigit/campusportal/internal/pkg/querycache"
)

// AuthService signs the portal session in and out
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (models.Session, error)
	Logout() error
}

type authServiceImpl struct {
	api        *httpclient.Client
	store      *session.Store
	cache      *querycache.Cache
	normalizer *apperrors.Normalizer
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	api *httpclient.Client,
	store *session.Store,
	cache *querycache.Cache,
	normalizer *apperrors.Normalizer,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		api:        api,
		store:      store,
		cache:      cache,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Login exchanges credentials for tokens and records the session. A caller
// that leaves mid-request still ends up signed in once the backend answers.
func (s *authServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (models.Session, error) {
	resp, err := s.api.Post(context.WithoutCancel(ctx), "/auth/login", req)
	if err != nil {
		return models.Anonymous(), settle(ctx, s.normalizer, err)
	}

	var login dto.LoginResponse
	if err := resp.Decode(&login); err != nil {
		return models.Anonymous(), settle(ctx, s.normalizer, err)
	}

	role := models.ParseRole(login.Role)
	if !role.Valid() {
		s.logger.Warn().Str("role", login.Role).Int64("userID", login.ID).Msg("Backend issued an unrecognized role")
		return models.Anonymous(), s.normalizer.Handle(fmt.Errorf("unrecognized role %q", login.Role))
	}

	identity := session.Identity{
		UserID: login.ID,
		Profile: &models.Profile{
			ID:       login.ID,
			Username: login.Username,
			Email:    req.Email,
			Role:     role,
		},
		AccessToken:  login.Token,
		RefreshToken: login.RefreshToken,
	}
	if err := s.store.Login(role, identity); err != nil {
		return models.Anonymous(), s.normalizer.Handle(err)
	}

	// Cached reads belonged to whoever was signed in before
	s.cache.Flush()

	s.logger.Info().Int64("userID", login.ID).Str("role", role.String()).Msg("Signed in")
	return s.store.Snapshot(), nil
}

// Logout clears the session. It is safe to call when nobody is signed in.
func (s *authServiceImpl) Logout() error {
	s.cache.Flush()
	if err := s.store.Logout(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear persisted session")
		return err
	}
	return nil
}

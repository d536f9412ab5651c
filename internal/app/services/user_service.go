package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
	"github.com/yigit/campusportal/internal/pkg/httpclient"
	"github.com/yigit/campusportal/internal/pkg/querycache"
)

const usersPath = "/users"

// UserQuery filters an account listing
type UserQuery struct {
	Roles []models.Role
	Query string
}

func (q UserQuery) params() httpclient.Params {
	roles := make([]string, 0, len(q.Roles))
	for _, r := range q.Roles {
		roles = append(roles, r.String())
	}
	return httpclient.Params{
		httpclient.P("role", roles),
		httpclient.P("q", q.Query),
	}
}

// UserService reads the account directory
type UserService interface {
	ListUsers(ctx context.Context, q UserQuery) ([]models.User, error)
	// InvalidateUsers drops every cached listing
	InvalidateUsers()
}

type userServiceImpl struct {
	api        *httpclient.Client
	cache      *querycache.Cache
	normalizer *apperrors.Normalizer
	logger     zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(api *httpclient.Client, cache *querycache.Cache, normalizer *apperrors.Normalizer, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		api:        api,
		cache:      cache,
		normalizer: normalizer,
		logger:     logger,
	}
}

type usersEnvelope struct {
	Status  int           `json:"status"`
	Message string        `json:"message"`
	Data    []models.User `json:"data"`
}

// ListUsers fetches matching accounts, served from cache when fresh
func (s *userServiceImpl) ListUsers(ctx context.Context, q UserQuery) ([]models.User, error) {
	params := q.params()
	key := usersPath
	if encoded := params.Encode(); encoded != "" {
		key += "?" + encoded
	}

	v, err := s.cache.Load(ctx, key, func(ctx context.Context) (interface{}, error) {
		resp, err := s.api.Get(ctx, usersPath, params)
		if err != nil {
			return nil, err
		}
		var env usersEnvelope
		if err := resp.Decode(&env); err != nil {
			return nil, err
		}
		s.logger.Debug().Str("key", key).Int("count", len(env.Data)).Msg("Fetched users")
		return env.Data, nil
	})
	if err != nil {
		return nil, settle(ctx, s.normalizer, err)
	}

	users, _ := v.([]models.User)
	return append([]models.User(nil), users...), nil
}

func (s *userServiceImpl) InvalidateUsers() {
	s.cache.InvalidatePrefix(usersPath)
}

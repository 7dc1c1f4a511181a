package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/linkpage/internal/auth/password"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	"github.com/smallbiznis/linkpage/internal/clock"
	"github.com/smallbiznis/linkpage/internal/config"
	identitydomain "github.com/smallbiznis/linkpage/internal/identity/domain"
	"github.com/smallbiznis/linkpage/internal/plan"
	"github.com/smallbiznis/linkpage/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Cfg    config.Config
	Issuer *token.Issuer
	Repo   identitydomain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	cfg    config.Config
	issuer *token.Issuer
	repo   identitydomain.Repository
}

func NewService(p Params) identitydomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("identity.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		cfg:    p.Cfg,
		issuer: p.Issuer,
		repo:   p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, req identitydomain.RegisterRequest) (identitydomain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))
	name := strings.TrimSpace(req.Name)

	if email == "" || !strings.Contains(email, "@") || username == "" || name == "" {
		return identitydomain.User{}, identitydomain.ErrInvalidRequest
	}
	if len(req.Password) < minPasswordLen {
		return identitydomain.User{}, identitydomain.ErrInvalidRequest
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return identitydomain.User{}, err
	}

	now := s.clock.Now()
	user := identitydomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         identitydomain.RoleTenant,
		Plan:         plan.Free,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Uniqueness is enforced by the ux_users_email / ux_users_username
	// indexes so concurrent registrations cannot both succeed.
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// The driver does not say which index fired, so look up the
			// email to attribute the conflict.
			existing, findErr := s.repo.FindByEmail(ctx, s.db, email)
			if findErr == nil && existing != nil {
				return identitydomain.User{}, identitydomain.ErrEmailTaken
			}
			return identitydomain.User{}, identitydomain.ErrUsernameTaken
		}
		return identitydomain.User{}, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) Login(ctx context.Context, req identitydomain.LoginRequest) (identitydomain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return identitydomain.LoginResponse{}, identitydomain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return identitydomain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return identitydomain.LoginResponse{}, identitydomain.ErrInvalidCredentials
	}

	signed, err := s.issuer.Mint(user.ID.String(), string(user.Role), s.cfg.AuthTokenTTL, s.clock.Now())
	if err != nil {
		return identitydomain.LoginResponse{}, err
	}

	return identitydomain.LoginResponse{Token: signed, User: *user}, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (identitydomain.User, error) {
	id, err := s.parseID(userID)
	if err != nil {
		return identitydomain.User{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return identitydomain.User{}, err
	}
	if user == nil {
		return identitydomain.User{}, identitydomain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req identitydomain.UpdateProfileRequest) (identitydomain.User, error) {
	id, err := s.parseID(req.UserID)
	if err != nil {
		return identitydomain.User{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return identitydomain.User{}, err
	}
	if user == nil {
		return identitydomain.User{}, identitydomain.ErrUserNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return identitydomain.User{}, identitydomain.ErrInvalidRequest
		}
		user.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return identitydomain.User{}, identitydomain.ErrInvalidRequest
		}
		user.Email = email
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return identitydomain.User{}, identitydomain.ErrEmailTaken
		}
		return identitydomain.User{}, err
	}
	return *user, nil
}

func (s *Service) UpdatePlan(ctx context.Context, userID string, p plan.Plan) error {
	if !plan.Valid(p) {
		return identitydomain.ErrInvalidPlan
	}

	id, err := s.parseID(userID)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if user == nil {
		return identitydomain.ErrUserNotFound
	}

	return s.repo.UpdatePlan(ctx, s.db, id, p)
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	id, err := s.parseID(userID)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if user == nil {
		return identitydomain.ErrUserNotFound
	}

	// Pages, blocks, shortlinks, events, domains and payments cascade via
	// foreign keys declared in the migrations.
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]identitydomain.User, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 250 {
		limit = 250
	}

	users, err := s.repo.List(ctx, s.db, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, identitydomain.ErrInvalidUser
	}
	return id, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"hotel/config"
	"hotel/infras/jwt"
	"hotel/infras/otel"
	"hotel/internal/domains/auth/model"
	"hotel/internal/domains/auth/model/dto"
	userModel "hotel/internal/domains/user/model"
	userRepo "hotel/internal/domains/user/repository"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/password"
	"hotel/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.TokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) error
}

type serviceImpl struct {
	users  userRepo.User
	tokens jwt.JWT
	cfg    *config.Config
	otel   otel.Otel
}

func New(users userRepo.User, cfg *config.Config, otel otel.Otel, tokens jwt.JWT) Auth {
	return &serviceImpl{
		users:  users,
		tokens: tokens,
		cfg:    cfg,
		otel:   otel,
	}
}

func byEmail(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: userModel.FieldEmail, Operator: gDto.FilterOperatorEq, Value: email, Table: userModel.TableName},
		},
	}
}

// checkPassword separates a wrong password from a hash that cannot be read.
func checkPassword(plain, hashed string, wrong error) error {
	err := password.Verify(plain, hashed)
	if errors.Is(err, password.ErrInvalidPassword) {
		return wrong
	}

	return err
}

// Register creates a guest account with the normal role.
func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req.Normalize()

	taken, err := s.users.Exist(ctx, byEmail(req.Email))
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if taken {
		return userModel.ErrEmailTaken
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err = s.users.Insert(ctx, req.ToUserModel(constant.ContextGuest, hashed)); err != nil {
		log.Error().Err(err).Msg("failed to create user")

		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Login trades credentials for a token pair. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req.Normalize()

	user, err := s.users.Get(ctx, byEmail(req.Email))
	if err != nil {
		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("login attempt with unknown email")

		return res, model.ErrInvalidCredentials
	}

	if err = checkPassword(req.Password, user.Password, model.ErrInvalidCredentials); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("login rejected")

		return res, err
	}

	if !user.Active {
		return res, model.ErrAccountDeactivated
	}

	pair, err := s.tokens.GenerateTokenPair(ctx, user.ID, user.Email, user.Level)
	if err != nil {
		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	patch := shared.TransformFields(dto.LastLoginPatch{LastLogin: timezone.Now()}, user.ID)
	if err = s.users.Update(ctx, patch, shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName)); err != nil {
		return res, fmt.Errorf("failed to record last login: %w", err)
	}

	res.FromTokenPair(pair)

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	pair, err := s.tokens.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("refresh token rejected")

		return res, model.ErrInvalidRefreshToken
	}

	res.FromTokenPair(pair)

	return res, nil
}

// ChangePassword replaces userID's password after checking the current one.
// The change is attributed to the caller in ctx.
func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, userID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(userID, userModel.FieldID, userModel.TableName)

	user, err := s.users.Get(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return userModel.ErrUserNotFound
	}

	if err = checkPassword(req.CurrentPassword, user.Password, model.ErrWrongCurrentPassword); err != nil {
		return err
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err = s.users.Update(ctx, shared.TransformFields(dto.PasswordPatch{Password: hashed}, caller), filter); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

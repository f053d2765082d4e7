package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"MChat/module/user/model"
	"MChat/service/storage"
	"MChat/tools/errs"
	"MChat/tools/ids"
	"MChat/tools/security"
)

type UserService struct {
	jwtOpts security.Options
	tokens  *storage.TokenStore
}

func NewUserService(secret string, ttl time.Duration, tokens *storage.TokenStore) *UserService {
	opts := security.DefaultOptions([]byte(secret))
	opts.TTL = ttl
	return &UserService{jwtOpts: opts, tokens: tokens}
}

// Register creates an account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, username, password, nickname string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, errs.ErrValidation.WrapMsg("username and password are required")
	}
	if _, err := model.FindByUsername(ctx, username); err == nil {
		return nil, errs.ErrValidation.WrapMsg("username already taken", "username", username)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUpstream.WrapMsg("user lookup failed", "err", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.WrapMsg(err, "bcrypt hash")
	}
	u := &model.User{
		UserID:     ids.GenerateString(),
		Username:   username,
		Password:   string(hash),
		Nickname:   nickname,
		CreateTime: time.Now(),
	}
	if u.Nickname == "" {
		u.Nickname = username
	}
	if _, err := u.Collection().InsertOne(ctx, u); err != nil {
		return nil, errs.ErrUpstream.WrapMsg("user insert failed", "err", err)
	}
	return u, nil
}

// Login verifies credentials, issues a JWT and allowlists its hash.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	u, err := model.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, errs.ErrAuthentication.WrapMsg("unknown user")
		}
		return "", nil, errs.ErrUpstream.WrapMsg("user lookup failed", "err", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errs.ErrAuthentication.WrapMsg("bad credentials")
	}

	token, hash, _, err := security.Generate(s.jwtOpts, u.UserID)
	if err != nil {
		return "", nil, errs.WrapMsg(err, "token sign")
	}
	if err := s.tokens.Store(ctx, u.UserID, hash, s.jwtOpts.TTL); err != nil {
		return "", nil, errs.ErrUpstream.WrapMsg("token store failed", "err", err)
	}
	return token, u, nil
}

// VerifyToken resolves a bearer credential into a user snapshot. This is
// the authentication gate the websocket handshake and the HTTP middleware
// both run through.
func (s *UserService) VerifyToken(ctx context.Context, token string) (*model.Snapshot, error) {
	if token == "" {
		return nil, errs.ErrAuthentication.WrapMsg("missing token")
	}
	claims, err := security.Verify(s.jwtOpts, token)
	if err != nil {
		if security.IsExpired(err) {
			return nil, errs.ErrTokenExpired.Wrap()
		}
		return nil, errs.ErrAuthentication.WrapMsg("token verify failed")
	}
	userID := claims.UserID()
	if userID == "" {
		return nil, errs.ErrAuthentication.WrapMsg("token has no subject")
	}

	ok, err := s.tokens.Check(ctx, userID, security.HashToken(token))
	if err != nil {
		return nil, errs.ErrUpstream.WrapMsg("token check failed", "err", err)
	}
	if !ok {
		return nil, errs.ErrTokenExpired.WrapMsg("token revoked or expired")
	}

	u, err := model.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrAuthentication.WrapMsg("user no longer exists")
		}
		return nil, errs.ErrUpstream.WrapMsg("user lookup failed", "err", err)
	}
	snap := u.Snapshot()
	return &snap, nil
}

// Logout revokes every live token for the user.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.tokens.RevokeAll(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	accountrepo "github.com/AlibekovAA/chat-accounts/internal/account/repository"
	"github.com/AlibekovAA/chat-accounts/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/chat-accounts/internal/common/crypto"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
	"github.com/AlibekovAA/chat-accounts/internal/common/resilience"
)

type SessionTokens interface {
	Issue(user domain.User, now time.Time) (domain.IssuedToken, error)
	Validate(token string, now time.Time) (domain.Claims, error)
}

type AccountServiceDeps struct {
	Users         accountrepo.UserRepository
	RevokedTokens accountrepo.RevokedTokenRepository
	Hasher        commoncrypto.PasswordHasher
	Tokens        SessionTokens
	IDGenerator   commoncrypto.IDGenerator
	Clock         clock.Clock
	Limiter       *LoginLimiter
	Breaker       *resilience.CircuitBreaker
	Log           *logger.Logger
}

type AccountService struct {
	users         accountrepo.UserRepository
	revokedTokens accountrepo.RevokedTokenRepository
	hasher        commoncrypto.PasswordHasher
	tokens        SessionTokens
	idGenerator   commoncrypto.IDGenerator
	clock         clock.Clock
	limiter       *LoginLimiter
	breaker       *resilience.CircuitBreaker
	validator     *CredentialValidator
	log           *logger.Logger

	// verified against when the username is unknown so that the
	// response time does not reveal whether an account exists
	dummyHash string
	dummySalt string
}

func NewAccountService(deps AccountServiceDeps) (*AccountService, error) {
	c := deps.Clock
	if c == nil {
		c = clock.NewRealClock()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = commoncrypto.NewUUIDGenerator()
	}

	dummyHash, dummySalt, err := deps.Hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, newInternalError(err)
	}

	return &AccountService{
		users:         deps.Users,
		revokedTokens: deps.RevokedTokens,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		idGenerator:   idGen,
		clock:         c,
		limiter:       deps.Limiter,
		breaker:       deps.Breaker,
		validator:     NewCredentialValidator(),
		log:           deps.Log,
		dummyHash:     dummyHash,
		dummySalt:     dummySalt,
	}, nil
}

type RegisterInput struct {
	Username string
	Password string
}

type AuthenticateInput struct {
	Username string
	Password string
}

type RegisterResult struct {
	Status Status
	Reason string
	UserID domain.UserID
}

type AuthResult struct {
	Status    Status
	Reason    string
	Token     string
	ExpiresAt time.Time
}

type TokenResult struct {
	Status Status
	Claims domain.Claims
}

type LogoutResult struct {
	Status Status
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (result RegisterResult, err error) {
	defer func() {
		result.Status = StatusOf(err)
		result.Reason = reason(err)
		recordRegistration(result.Status)
	}()

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validator.ValidateRegistration(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return RegisterResult{}, err
	}

	start := time.Now()
	hash, salt, err := s.hasher.Hash(input.Password)
	observePasswordHash(start)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return RegisterResult{}, newInternalError(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return RegisterResult{}, newInternalError(err)
	}

	if err := ctx.Err(); err != nil {
		return RegisterResult{}, storageError(err)
	}

	user := domain.User{
		ID:           domain.UserID(id),
		Username:     input.Username,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    s.clock.Now(),
	}

	err = s.call(ctx, func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, accountrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return RegisterResult{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return RegisterResult{}, storageError(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return RegisterResult{UserID: user.ID}, nil
}

func (s *AccountService) Authenticate(ctx context.Context, input AuthenticateInput) (result AuthResult, err error) {
	defer func() {
		result.Status = StatusOf(err)
		result.Reason = reason(err)
		recordAuthentication(result.Status)
	}()

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := s.validator.ValidateLogin(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_validation_failed",
		}).Warnf("login validation failed: %v", err)
		return AuthResult{}, err
	}

	if locked, until := s.limiter.Locked(input.Username); locked {
		s.log.WithFields(ctx, logger.Fields{
			"username":     input.Username,
			"locked_until": until.Format(time.RFC3339),
			"action":       "login_locked",
		}).Warn("login rejected: account locked")
		return AuthResult{}, ErrAccountLocked
	}

	var user domain.User
	err = s.call(ctx, func(ctx context.Context) error {
		var findErr error
		user, findErr = s.users.FindByUsername(ctx, input.Username)
		return findErr
	})
	if err != nil && !errors.Is(err, accountrepo.ErrUserNotFound) {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_lookup_failed",
		}).Errorf("login failed: %v", err)
		return AuthResult{}, storageError(err)
	}

	start := time.Now()
	var ok bool
	if err != nil {
		s.hasher.Verify(input.Password, s.dummyHash, s.dummySalt)
	} else {
		ok = s.hasher.Verify(input.Password, user.PasswordHash, user.Salt)
	}
	observePasswordHash(start)

	if !ok {
		if s.limiter.RecordFailure(input.Username) {
			incrementAccountLockouts()
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_lockout",
			}).Warn("username locked after repeated failed logins")
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_credentials",
		}).Warn("login failed: invalid credentials")
		return AuthResult{}, ErrInvalidCredentials
	}

	s.limiter.RecordSuccess(input.Username)

	issued, err := s.tokens.Issue(user, s.clock.Now())
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		if errors.Is(err, ErrSigningKeyUnavailable) {
			return AuthResult{}, err
		}
		return AuthResult{}, newInternalError(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	return AuthResult{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

func (s *AccountService) ValidateToken(ctx context.Context, token string) (result TokenResult, err error) {
	defer func() {
		result.Status = StatusOf(err)
		recordTokenValidation(result.Status)
	}()

	claims, err := s.tokens.Validate(token, s.clock.Now())
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "token_validation_failed",
			"status": string(StatusOf(err)),
		}).Debugf("token validation failed: %v", err)
		return TokenResult{}, err
	}

	revoked, err := s.isRevoked(ctx, claims.TokenID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":  string(claims.UserID),
			"token_id": claims.TokenID,
			"action":   "token_revocation_check_failed",
		}).Errorf("token revocation check failed: %v", err)
		return TokenResult{}, storageError(err)
	}
	if revoked {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":  string(claims.UserID),
			"token_id": claims.TokenID,
			"action":   "token_revoked",
		}).Debug("token rejected: revoked")
		return TokenResult{}, ErrTokenRevoked
	}

	return TokenResult{Claims: claims}, nil
}

// Logout revokes a valid token until its natural expiry. A token that is
// already unusable needs no record, so it is accepted as a no-op.
func (s *AccountService) Logout(ctx context.Context, token string) (result LogoutResult, err error) {
	defer func() {
		result.Status = StatusOf(err)
	}()

	now := s.clock.Now()
	claims, err := s.tokens.Validate(token, now)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "logout_noop",
			"status": string(StatusOf(err)),
		}).Debug("logout with unusable token, nothing to revoke")
		return LogoutResult{}, nil
	}

	if err := ctx.Err(); err != nil {
		return LogoutResult{}, storageError(err)
	}

	err = s.call(ctx, func(ctx context.Context) error {
		return s.revokedTokens.Revoke(ctx, domain.RevokedToken{
			TokenID:   claims.TokenID,
			UserID:    claims.UserID,
			ExpiresAt: claims.ExpiresAt,
			RevokedAt: now,
		})
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":  string(claims.UserID),
			"token_id": claims.TokenID,
			"action":   "logout_revoke_failed",
		}).Errorf("logout failed: %v", err)
		return LogoutResult{}, storageError(err)
	}

	incrementSessionTokensRevoked()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":  string(claims.UserID),
		"username": claims.Username,
		"action":   "logout_success",
	}).Info("logout success")

	return LogoutResult{}, nil
}

func (s *AccountService) isRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.call(ctx, func(ctx context.Context) error {
		var checkErr error
		revoked, checkErr = s.revokedTokens.IsRevoked(ctx, jti, s.clock.Now())
		return checkErr
	})
	return revoked, err
}

func (s *AccountService) call(ctx context.Context, fn func(context.Context) error) error {
	if s.breaker == nil {
		return fn(ctx)
	}
	return s.breaker.Call(ctx, fn)
}

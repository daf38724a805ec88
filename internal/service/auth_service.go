package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/ratelimit"
	"github.com/spec-kit/identity-service/internal/repository"
)

// Profile is the account projection returned after login.
type Profile struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// LoginResult bundles the issued token with the caller's profile.
type LoginResult struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Profile   Profile
}

// AuthService coordinates registration, login and role management flows.
type AuthService struct {
	accounts         repository.AccountRepository
	roles            repository.RoleRepository
	confirmations    repository.ConfirmationRepository
	limiter          ratelimit.LoginLimiter
	dispatcher       events.Dispatcher
	issuer           *auth.TokenIssuer
	policy           auth.PasswordPolicy
	bcryptCost       int
	autoConfirm      bool
	requireConfirmed bool
	confirmTTL       time.Duration
	dummyHash        string
	compare          func(hash, password string) error
	logger           *zap.Logger
	now              func() time.Time
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	Accounts      repository.AccountRepository
	Roles         repository.RoleRepository
	Confirmations repository.ConfirmationRepository
	Limiter       ratelimit.LoginLimiter
	Dispatcher    events.Dispatcher
	Issuer        *auth.TokenIssuer
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies, logger *zap.Logger) (*AuthService, error) {
	if deps.Issuer == nil {
		return nil, fmt.Errorf("%w: token issuer is required", auth.ErrConfiguration)
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}

	// Compared against when the username is unknown so both paths cost a bcrypt check.
	dummyHash, err := auth.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}

	return &AuthService{
		accounts:      deps.Accounts,
		roles:         deps.Roles,
		confirmations: deps.Confirmations,
		limiter:       limiter,
		dispatcher:    dispatcher,
		issuer:        deps.Issuer,
		policy: auth.PasswordPolicy{
			MinLength:              cfg.PasswordMinLength,
			RequireDigit:           cfg.PasswordRequireDigit,
			RequireLowercase:       cfg.PasswordRequireLowercase,
			RequireUppercase:       cfg.PasswordRequireUppercase,
			RequireNonAlphanumeric: cfg.PasswordRequireNonAlphanumeric,
		},
		bcryptCost:       cfg.BcryptCost,
		autoConfirm:      cfg.AutoConfirmEmail,
		requireConfirmed: cfg.RequireConfirmedEmail,
		confirmTTL:       cfg.EmailConfirmationTTL(),
		dummyHash:        dummyHash,
		compare:          auth.ComparePassword,
		logger:           logger,
		now:              time.Now,
	}, nil
}

// Register creates an account holding the default User role.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", auth.ErrInvalidInput)
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if err := s.checkPassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// The default role must exist before the account does.
	if _, err := s.ensureRole(ctx, domain.RoleUser); err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:       username,
		Email:          email,
		EmailConfirmed: s.autoConfirm,
		PasswordHash:   hash,
		SecurityStamp:  uuid.NewString(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.roles.AddToAccount(ctx, account.ID, domain.RoleUser); err != nil {
		return nil, fmt.Errorf("assign default role: %w", err)
	}

	if !account.EmailConfirmed {
		if err := s.requestConfirmation(ctx, account); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.EventAccountRegistered, account, events.AccountRegisteredPayload{
		Email:          account.Email,
		EmailConfirmed: account.EmailConfirmed,
		DefaultRole:    domain.RoleUser,
	})
	return account, nil
}

// Login verifies credentials and issues a token carrying the account's current roles.
// Unknown users, wrong passwords and locked-out users all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	locked, err := s.limiter.Locked(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check login limiter: %w", err)
	}
	if locked {
		_ = s.compare(s.dummyHash, password)
		s.publish(ctx, events.EventLoginFailed, &domain.Account{Username: username}, events.LoginFailedPayload{Reason: "locked"})
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("lookup account: %w", err)
		}
		_ = s.compare(s.dummyHash, password)
		s.loginFailed(ctx, &domain.Account{Username: username}, "unknown_user")
		return nil, ErrInvalidCredentials
	}

	if err := s.compare(account.PasswordHash, password); err != nil {
		s.loginFailed(ctx, account, "wrong_password")
		return nil, ErrInvalidCredentials
	}

	if s.requireConfirmed && !account.EmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}

	roles, err := s.roles.ListForAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	issued, err := s.issuer.IssueTokenAt(account.Identity(), roles, account.EmailConfirmed, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.limiter.Reset(ctx, account.Username); err != nil {
		s.logger.Warn("reset login limiter", zap.Error(err))
	}
	s.publish(ctx, events.EventLoginSucceeded, account, events.LoginSucceededPayload{
		TokenID:   issued.TokenID,
		Roles:     roles,
		ExpiresAt: issued.ExpiresAt,
	})

	return &LoginResult{
		Token:     issued.Token,
		TokenID:   issued.TokenID,
		ExpiresAt: issued.ExpiresAt,
		Profile: Profile{
			Username: account.Username,
			Email:    account.Email,
			Roles:    roles,
		},
	}, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	account, err := s.findAccount(ctx, username)
	if err != nil {
		return err
	}

	// Guesses of the current password count against the login throttle.
	locked, err := s.limiter.Locked(ctx, account.Username)
	if err != nil {
		return fmt.Errorf("check login limiter: %w", err)
	}
	if locked {
		_ = s.compare(s.dummyHash, currentPassword)
		return errIncorrectPassword()
	}
	if err := s.compare(account.PasswordHash, currentPassword); err != nil {
		if err := s.limiter.RecordFailure(ctx, account.Username); err != nil {
			s.logger.Warn("record login failure", zap.Error(err))
		}
		return errIncorrectPassword()
	}
	if err := s.limiter.Reset(ctx, account.Username); err != nil {
		s.logger.Warn("reset login limiter", zap.Error(err))
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = hash
	account.SecurityStamp = uuid.NewString()
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	s.publish(ctx, events.EventPasswordChanged, account, nil)
	return nil
}

// AssignRole adds the account to role, creating the role first when needed.
// Assigning a role the account already holds succeeds without changes.
func (s *AuthService) AssignRole(ctx context.Context, username, role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return ErrInvalidRole
	}
	account, err := s.findAccount(ctx, username)
	if err != nil {
		return err
	}

	created, err := s.ensureRole(ctx, role)
	if err != nil {
		return err
	}
	if err := s.roles.AddToAccount(ctx, account.ID, role); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	s.publish(ctx, events.EventRoleAssigned, account, events.RoleAssignedPayload{Role: role, RoleCreated: created})
	return nil
}

// CheckRoles lists the roles currently held by username.
func (s *AuthService) CheckRoles(ctx context.Context, username string) ([]string, error) {
	account, err := s.findAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.ListForAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// ConfirmEmail consumes a confirmation token. Already-confirmed accounts succeed as a no-op.
func (s *AuthService) ConfirmEmail(ctx context.Context, accountID, token string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}
	if account.EmailConfirmed {
		return nil
	}
	if token == "" {
		return ErrInvalidConfirmation
	}

	confirmation, err := s.confirmations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidConfirmation
		}
		return fmt.Errorf("lookup confirmation: %w", err)
	}
	if confirmation.AccountID != account.ID || confirmation.UsedAt != nil || !s.now().Before(confirmation.ExpiresAt) {
		return ErrInvalidConfirmation
	}

	if err := s.confirmations.MarkUsed(ctx, confirmation.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidConfirmation
		}
		return fmt.Errorf("consume confirmation: %w", err)
	}
	account.EmailConfirmed = true
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	s.publish(ctx, events.EventEmailConfirmed, account, nil)
	return nil
}

func (s *AuthService) findAccount(ctx context.Context, username string) (*domain.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

// ensureRole creates role if absent and reports whether it did.
func (s *AuthService) ensureRole(ctx context.Context, role string) (bool, error) {
	exists, err := s.roles.Exists(ctx, role)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	if exists {
		return false, nil
	}
	if _, err := s.roles.Create(ctx, role); err != nil {
		// Another request created it first.
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create role: %w", err)
	}
	return true, nil
}

func (s *AuthService) checkPassword(password string) error {
	var policyErr *auth.PasswordPolicyError
	if err := s.policy.Check(password); errors.As(err, &policyErr) {
		return newValidationError(policyErr.Problems...)
	}
	return nil
}

func (s *AuthService) requestConfirmation(ctx context.Context, account *domain.Account) error {
	confirmation := &repository.EmailConfirmation{
		AccountID: account.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.confirmTTL),
	}
	if err := s.confirmations.Create(ctx, confirmation); err != nil {
		return fmt.Errorf("create confirmation: %w", err)
	}
	s.publish(ctx, events.EventEmailConfirmationRequested, account, events.EmailConfirmationRequestedPayload{
		Email:     account.Email,
		Token:     confirmation.Token,
		ExpiresAt: confirmation.ExpiresAt,
	})
	return nil
}

func errIncorrectPassword() error {
	return newValidationError("Incorrect password.")
}

func (s *AuthService) loginFailed(ctx context.Context, account *domain.Account, reason string) {
	if err := s.limiter.RecordFailure(ctx, account.Username); err != nil {
		s.logger.Warn("record login failure", zap.Error(err))
	}
	s.publish(ctx, events.EventLoginFailed, account, events.LoginFailedPayload{Reason: reason})
}

// publish reports handler failures in the log; they never fail the request.
func (s *AuthService) publish(ctx context.Context, eventType events.EventType, account *domain.Account, payload interface{}) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: account.ID,
		Username:  account.Username,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

// SeedRoles makes sure every default role exists.
func (s *AuthService) SeedRoles(ctx context.Context) error {
	for _, role := range domain.DefaultRoles {
		if _, err := s.ensureRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

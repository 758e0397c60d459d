package account

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/purinat/auth-account-server/package/argon2"
	"github.com/purinat/auth-account-server/package/jwt"
	"github.com/purinat/auth-account-server/package/resend"
)

// VerifyOtpResult carries the purpose-specific outcome of a confirmed
// challenge: a token pair for signin, a reset proof for password reset, or
// neither for account deletion.
type VerifyOtpResult struct {
	Purpose          OtpPurpose
	Signin           *SigninResponse
	ResetToken       string
	ResetTokenExpiry time.Time
}

// AuthResult is what the authentication middleware consumes. RotatedPair is
// non-nil when the access token had lapsed and a fresh pair was minted off
// the refresh token.
type AuthResult struct {
	Account     *AccountResponse
	RotatedPair *jwt.TokenPair
}

type AccountService interface {
	Signup(ctx context.Context, req *SignupRequest) (*AccountResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*OtpChallengeResponse, error)
	FederatedSignin(ctx context.Context, provider Provider, req *FederatedSigninRequest) (*SigninResponse, error)

	RequestOtp(ctx context.Context, req *RequestOtpRequest) (*OtpChallengeResponse, error)
	VerifyOtp(ctx context.Context, req *VerifyOtpRequest) (*VerifyOtpResult, error)

	RefreshTokens(ctx context.Context, refreshToken, accessToken string) (*SigninResponse, error)
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, accountID string) error

	GetProfile(ctx context.Context, accountID string) (*AccountResponse, error)
	UpdateProfile(ctx context.Context, accountID string, req *UpdateProfileRequest) (*AccountResponse, error)
	ChangePassword(ctx context.Context, accountID string, req *ChangePasswordRequest) error
	ResetPassword(ctx context.Context, req *ResetPasswordRequest, resetToken string, resetExpiry time.Time) error

	DeleteAccount(ctx context.Context, accountID string, req *DeleteAccountRequest) error
	Reactivate(ctx context.Context, req *ReactivateRequest) (*SigninResponse, error)
}

type accountService struct {
	repository    AccountRepository
	otpService    OtpService
	tokenService  *jwt.TokenService
	avatarStore   AvatarStore
	resendService resend.ResendService
	fromEmail     string
	logger        zerolog.Logger
}

var _ AccountService = (*accountService)(nil)

func NewAccountService(
	repository AccountRepository,
	otpService OtpService,
	tokenService *jwt.TokenService,
	avatarStore AvatarStore,
	resendService resend.ResendService,
	fromEmail string,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		repository:    repository,
		otpService:    otpService,
		tokenService:  tokenService,
		avatarStore:   avatarStore,
		resendService: resendService,
		fromEmail:     fromEmail,
		logger:        logger,
	}
}

// Signup registers a local account. A soft-deleted account still owns its
// email address, so the conflict check covers deleted documents too.
func (s *accountService) Signup(ctx context.Context, req *SignupRequest) (*AccountResponse, error) {
	req.Email = NormalizeEmail(req.Email)

	exists, err := s.repository.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyInUse
	}

	passwordHash, err := argon2.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &Account{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		Provider:     ProviderLocal,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repository.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.sendEmail(ctx, created.Email, GetWelcomeTemplate(created.Name))

	return created.ToResponse(), nil
}

// Signin checks credentials and, when they hold, issues the signin second
// factor. Tokens are only minted once the challenge is confirmed.
func (s *accountService) Signin(ctx context.Context, req *SigninRequest) (*OtpChallengeResponse, error) {
	account, err := s.verifyCredential(ctx, NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, err
	}

	challenge, err := s.otpService.Issue(ctx, account.Email, OtpPurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

// FederatedSignin signs in, or first registers, an account backed by an
// external identity provider. The provider vouches for the email, so the
// account is created verified and no second factor is required.
func (s *accountService) FederatedSignin(ctx context.Context, provider Provider, req *FederatedSigninRequest) (*SigninResponse, error) {
	req.Email = NormalizeEmail(req.Email)

	account, err := s.repository.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	now := time.Now()

	if account == nil {
		created := &Account{
			Email:           req.Email,
			Name:            req.Name,
			Provider:        provider,
			ProviderID:      req.ProviderID,
			Role:            RoleUser,
			IsEmailVerified: true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if req.AvatarURL != "" {
			created.Avatar = &Avatar{URL: req.AvatarURL}
		}

		account, err = s.repository.Create(ctx, created)
		if err != nil {
			return nil, fmt.Errorf("failed to create federated account: %w", err)
		}

		s.sendEmail(ctx, account.Email, GetWelcomeTemplate(account.Name))

		return s.completeSignin(ctx, account)
	}

	if account.IsDeleted {
		return nil, ErrAccountDeactivated
	}

	if account.Provider != provider {
		return nil, ErrProviderMismatch
	}

	if account.ProviderID != "" && account.ProviderID != req.ProviderID {
		return nil, ErrInvalidCredentials
	}

	if account.ProviderID == "" {
		if _, err := s.repository.Update(ctx, account.ID, bson.M{"provider_id": req.ProviderID}); err != nil {
			return nil, fmt.Errorf("failed to bind provider identity: %w", err)
		}
	}

	return s.completeSignin(ctx, account)
}

// RequestOtp issues a challenge outside the signin flow: a signin resend, a
// password reset, or an account deletion. Reset and deletion challenges are
// only issued for live local-state accounts, but the caller cannot tell an
// unknown email apart from a throttle-free issue.
func (s *accountService) RequestOtp(ctx context.Context, req *RequestOtpRequest) (*OtpChallengeResponse, error) {
	purpose, ok := ParseOtpPurpose(req.Purpose)
	if !ok {
		return nil, fmt.Errorf("%w: unknown otp purpose %q", ErrInvalidInput, req.Purpose)
	}

	req.Email = NormalizeEmail(req.Email)

	account, err := s.repository.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	// Unknown or deactivated addresses get a synthetic pending response so
	// the endpoint cannot be used to probe which emails are registered.
	if account == nil || account.IsDeleted {
		now := time.Now()
		return &OtpChallengeResponse{
			Email:               req.Email,
			Purpose:             string(purpose),
			ExpiresAt:           now.Add(OtpCodeExpiry),
			NextResendAllowedAt: now.Add(OtpResendDelay),
		}, nil
	}

	if err := s.ensureNotLocked(account); err != nil {
		return nil, err
	}

	if purpose == OtpPurposePasswordReset && account.Provider != ProviderLocal {
		return nil, ErrProviderMismatch
	}

	return s.otpService.Issue(ctx, account.Email, purpose)
}

// VerifyOtp confirms a challenge and applies its purpose effect in the same
// request: signin mints the token pair, password reset derives the reset
// proof, deletion soft-deletes the account.
func (s *accountService) VerifyOtp(ctx context.Context, req *VerifyOtpRequest) (*VerifyOtpResult, error) {
	purpose, ok := ParseOtpPurpose(req.Purpose)
	if !ok {
		return nil, fmt.Errorf("%w: unknown otp purpose %q", ErrInvalidInput, req.Purpose)
	}

	req.Email = NormalizeEmail(req.Email)

	account, err := s.repository.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || account.IsDeleted {
		return nil, ErrOtpNotFoundOrExpired
	}

	if err := s.ensureNotLocked(account); err != nil {
		return nil, err
	}

	if _, err := s.otpService.Verify(ctx, req.Email, purpose, req.Code); err != nil {
		return nil, err
	}

	result := &VerifyOtpResult{Purpose: purpose}

	switch purpose {
	case OtpPurposeSignin, OtpPurposeEmailVerification:
		signin, err := s.completeSignin(ctx, account)
		if err != nil {
			return nil, err
		}
		result.Signin = signin

	case OtpPurposePasswordReset:
		result.ResetToken = DeriveResetToken(account.ID.Hex())
		result.ResetTokenExpiry = time.Now().Add(ResetPasswordTokenExpiry)

	case OtpPurposeDeleteAccount:
		if err := s.softDelete(ctx, account); err != nil {
			return nil, err
		}

	default:
		// signup and password-change challenges have no side effect beyond
		// the confirmation itself.
	}

	return result, nil
}

// RefreshTokens exchanges a refresh token for a fresh pair. When the caller
// also presents a decodable access token, its subject must match the refresh
// token's; a mismatch means the cookies were spliced together from different
// sessions.
func (s *accountService) RefreshTokens(ctx context.Context, refreshToken, accessToken string) (*SigninResponse, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	subject, err := s.tokenService.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if accessToken != "" {
		accessSubject, err := s.tokenService.VerifyAccess(accessToken)
		if err == nil && accessSubject != subject {
			return nil, ErrUnauthorized
		}
	}

	account, err := s.liveAccountByID(ctx, subject)
	if err != nil {
		return nil, ErrUnauthorized
	}

	pair, err := s.tokenService.IssuePair(account.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	return &SigninResponse{
		Account:      account.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Authenticate resolves the account behind a cookie pair. A valid access
// token is enough on its own; when it has lapsed, the refresh token is
// verified and a rotated pair is returned for the caller to re-set. Any
// failure on the fallback path is terminal.
func (s *accountService) Authenticate(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	if accessToken != "" {
		subject, err := s.tokenService.VerifyAccess(accessToken)
		if err == nil {
			account, err := s.liveAccountByID(ctx, subject)
			if err != nil {
				return nil, ErrUnauthorized
			}
			return &AuthResult{Account: account.ToResponse()}, nil
		}
	}

	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	subject, err := s.tokenService.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	account, err := s.liveAccountByID(ctx, subject)
	if err != nil {
		return nil, ErrUnauthorized
	}

	pair, err := s.tokenService.IssuePair(account.ID.Hex())
	if err != nil {
		return nil, ErrUnauthorized
	}

	return &AuthResult{Account: account.ToResponse(), RotatedPair: pair}, nil
}

// Logout performs no state change of its own, but the account must still be
// live and unlocked before its cookies are cleared.
func (s *accountService) Logout(ctx context.Context, accountID string) error {
	account, err := s.liveAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	return s.ensureNotLocked(account)
}

func (s *accountService) GetProfile(ctx context.Context, accountID string) (*AccountResponse, error) {
	account, err := s.liveAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return account.ToResponse(), nil
}

func (s *accountService) UpdateProfile(ctx context.Context, accountID string, req *UpdateProfileRequest) (*AccountResponse, error) {
	account, err := s.liveAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNotLocked(account); err != nil {
		return nil, err
	}

	if !account.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	updateData := bson.M{}

	if req.Name != nil && *req.Name != "" {
		updateData["name"] = *req.Name
	}

	if req.Role != nil && *req.Role != "" {
		role, ok := ParseRole(*req.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *req.Role)
		}
		updateData["role"] = role
	}

	if req.Avatar != nil {
		avatar, err := s.avatarStore.Upload(ctx, account.ID.Hex(), req.Avatar)
		if err != nil {
			return nil, err
		}

		if account.Avatar != nil && account.Avatar.ObjectID != "" {
			if err := s.avatarStore.Remove(ctx, account.Avatar.ObjectID); err != nil {
				s.logger.Warn().Err(err).Str("object_id", account.Avatar.ObjectID).Msg("failed to remove previous avatar")
			}
		}

		updateData["avatar"] = avatar
	}

	if len(updateData) == 0 {
		return account.ToResponse(), nil
	}

	updated, err := s.repository.Update(ctx, account.ID, updateData)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if updated == nil {
		return nil, ErrAccountNotFound
	}

	return updated.ToResponse(), nil
}

func (s *accountService) ChangePassword(ctx context.Context, accountID string, req *ChangePasswordRequest) error {
	account, err := s.liveAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.ensureNotLocked(account); err != nil {
		return err
	}

	if account.Provider != ProviderLocal {
		return ErrProviderMismatch
	}

	if !account.IsEmailVerified {
		return ErrEmailNotVerified
	}

	matches, err := argon2.VerifyPassword(req.CurrentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify current password: %w", err)
	}
	if !matches {
		return ErrInvalidCredentials
	}

	same, err := s.isSameAsCurrent(account, req.NewPassword)
	if err != nil {
		return err
	}
	if same {
		return ErrSamePassword
	}

	if err := s.setPassword(ctx, account, req.NewPassword); err != nil {
		return err
	}

	s.sendEmail(ctx, account.Email, GetPasswordChangedTemplate())

	return nil
}

// ResetPassword finishes the reset flow started by a verified password-reset
// challenge. The caller proves the verification happened by presenting the
// derived reset token before its expiry.
func (s *accountService) ResetPassword(ctx context.Context, req *ResetPasswordRequest, resetToken string, resetExpiry time.Time) error {
	if resetToken == "" || !resetExpiry.After(time.Now()) {
		return ErrInvalidResetToken
	}

	req.Email = NormalizeEmail(req.Email)

	account, err := s.repository.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || account.IsDeleted {
		return ErrInvalidResetToken
	}

	if err := s.ensureNotLocked(account); err != nil {
		return err
	}

	if !VerifyResetToken(account.ID.Hex(), resetToken) {
		return ErrInvalidResetToken
	}

	if account.Provider != ProviderLocal {
		return ErrProviderMismatch
	}

	if !account.IsEmailVerified {
		return ErrEmailNotVerified
	}

	same, err := s.isSameAsCurrent(account, req.NewPassword)
	if err != nil {
		return err
	}
	if same {
		return ErrSamePassword
	}

	if err := s.setPassword(ctx, account, req.NewPassword); err != nil {
		return err
	}

	if _, err := s.repository.ResetLockout(ctx, account.ID); err != nil {
		s.logger.Warn().Err(err).Str("account_id", account.ID.Hex()).Msg("failed to reset lockout after password reset")
	}

	s.sendEmail(ctx, account.Email, GetPasswordChangedTemplate())

	return nil
}

// DeleteAccount soft-deletes by default, starting the reactivation wait; a
// permanent deletion removes the document and the stored avatar. Local
// accounts must re-present their password either way.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string, req *DeleteAccountRequest) error {
	account, err := s.liveAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.ensureNotLocked(account); err != nil {
		return err
	}

	if !account.IsEmailVerified {
		return ErrEmailNotVerified
	}

	if account.Provider == ProviderLocal {
		matches, err := argon2.VerifyPassword(req.Password, account.PasswordHash)
		if err != nil || !matches {
			return ErrInvalidCredentials
		}
	}

	if req.Permanent {
		return s.hardDelete(ctx, account)
	}

	return s.softDelete(ctx, account)
}

// Reactivate restores a soft-deleted account once its waiting period has
// elapsed and signs it straight in.
func (s *accountService) Reactivate(ctx context.Context, req *ReactivateRequest) (*SigninResponse, error) {
	req.Email = NormalizeEmail(req.Email)

	account, err := s.repository.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || !account.IsDeleted {
		return nil, ErrInvalidCredentials
	}

	if err := s.ensureNotLocked(account); err != nil {
		return nil, err
	}

	now := time.Now()
	if !account.CanReactivate(now) {
		return nil, &ReactivationPendingError{RetryAfter: account.ReactivateAvailableAt.Sub(now)}
	}

	if account.Provider == ProviderLocal {
		matches, err := argon2.VerifyPassword(req.Password, account.PasswordHash)
		if err != nil || !matches {
			return nil, ErrInvalidCredentials
		}
	}

	if _, err := s.repository.Update(ctx, account.ID, bson.M{"is_deleted": false}); err != nil {
		return nil, fmt.Errorf("failed to reactivate account: %w", err)
	}

	restored, err := s.repository.UnsetFields(ctx, account.ID, "deleted_at", "reactivate_available_at")
	if err != nil {
		return nil, fmt.Errorf("failed to clear deletion state: %w", err)
	}
	if restored == nil {
		return nil, ErrAccountNotFound
	}

	return s.completeSignin(ctx, restored)
}

// verifyCredential runs the full local signin gate: existence, deletion
// state, provider, lockout window, then the password itself. A failed
// password bumps the failure counter atomically; the attempt that reaches
// the threshold arms the lock.
func (s *accountService) verifyCredential(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repository.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}

	if account.IsDeleted {
		return nil, ErrAccountDeactivated
	}

	if account.Provider != ProviderLocal {
		return nil, ErrProviderMismatch
	}

	now := time.Now()
	if account.IsLocked(now) {
		return nil, &LockedError{RetryAfter: account.LockUntil.Sub(now)}
	}

	matches, err := argon2.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !matches {
		return nil, s.recordFailedAttempt(ctx, account)
	}

	if account.FailedLoginAttempts > 0 || account.LockUntil != nil {
		if _, err := s.repository.ResetLockout(ctx, account.ID); err != nil {
			s.logger.Warn().Err(err).Str("account_id", account.ID.Hex()).Msg("failed to reset lockout after signin")
		}
	}

	return account, nil
}

// ensureNotLocked gates account-facing operations outside the signin path on
// the lockout window.
func (s *accountService) ensureNotLocked(account *Account) error {
	now := time.Now()
	if account.IsLocked(now) {
		return &LockedError{RetryAfter: account.LockUntil.Sub(now)}
	}

	return nil
}

func (s *accountService) recordFailedAttempt(ctx context.Context, account *Account) error {
	updated, err := s.repository.IncrementFailedAttempts(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("failed to record signin attempt: %w", err)
	}
	if updated == nil {
		return ErrInvalidCredentials
	}

	if updated.FailedLoginAttempts >= LoginMaxAttempts {
		lockUntil := time.Now().Add(LoginLockTime)
		if _, err := s.repository.Update(ctx, account.ID, bson.M{"lock_until": lockUntil}); err != nil {
			return fmt.Errorf("failed to arm lockout: %w", err)
		}
		return &LockedError{RetryAfter: LoginLockTime}
	}

	return ErrInvalidCredentials
}

// isSameAsCurrent reports whether the candidate password matches the stored
// hash. It is split from verifyCredential because it must not touch the
// failure counter.
func (s *accountService) isSameAsCurrent(account *Account, candidate string) (bool, error) {
	if account.PasswordHash == "" {
		return false, nil
	}

	same, err := argon2.VerifyPassword(candidate, account.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("failed to compare passwords: %w", err)
	}

	return same, nil
}

func (s *accountService) setPassword(ctx context.Context, account *Account, newPassword string) error {
	passwordHash, err := argon2.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	updated, err := s.repository.Update(ctx, account.ID, bson.M{"password_hash": passwordHash})
	if err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}
	if updated == nil {
		return ErrAccountNotFound
	}

	return nil
}

// completeSignin finalizes any successful authentication: it stamps the
// login, marks the email verified, clears lockout state and mints the pair.
func (s *accountService) completeSignin(ctx context.Context, account *Account) (*SigninResponse, error) {
	now := time.Now()

	updated, err := s.repository.Update(ctx, account.ID, bson.M{
		"last_login_at":         now,
		"is_email_verified":     true,
		"failed_login_attempts": 0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record signin: %w", err)
	}
	if updated == nil {
		return nil, ErrAccountNotFound
	}

	if updated.LockUntil != nil {
		if updated, err = s.repository.UnsetFields(ctx, account.ID, "lock_until"); err != nil {
			return nil, fmt.Errorf("failed to clear lockout: %w", err)
		}
		if updated == nil {
			return nil, ErrAccountNotFound
		}
	}

	pair, err := s.tokenService.IssuePair(account.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	return &SigninResponse{
		Account:      updated.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *accountService) softDelete(ctx context.Context, account *Account) error {
	now := time.Now()

	updated, err := s.repository.Update(ctx, account.ID, bson.M{
		"is_deleted":              true,
		"deleted_at":              now,
		"reactivate_available_at": now.Add(ReactivationDelay),
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	if updated == nil {
		return ErrAccountNotFound
	}

	return nil
}

func (s *accountService) hardDelete(ctx context.Context, account *Account) error {
	if account.Avatar != nil && account.Avatar.ObjectID != "" {
		if err := s.avatarStore.Remove(ctx, account.Avatar.ObjectID); err != nil {
			s.logger.Warn().Err(err).Str("object_id", account.Avatar.ObjectID).Msg("failed to remove avatar during deletion")
		}
	}

	if err := s.repository.Delete(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return nil
}

func (s *accountService) liveAccountByID(ctx context.Context, accountID string) (*Account, error) {
	objectID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}

	account, err := s.repository.GetByID(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || account.IsDeleted {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

func (s *accountService) sendEmail(ctx context.Context, to string, template EmailTemplate) {
	if s.resendService == nil {
		return
	}

	request := &resend.EmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: template.Subject,
		Html:    template.HtmlBody,
		Text:    template.TextBody,
	}

	if _, err := s.resendService.SendEmail(ctx, request); err != nil {
		s.logger.Warn().Err(err).Str("email", to).Str("subject", template.Subject).Msg("failed to send notification email")
	}
}

package account

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/purinat/auth-account-server/package/resend"
)

type OtpService interface {
	Issue(ctx context.Context, email string, purpose OtpPurpose) (*OtpChallengeResponse, error)
	Verify(ctx context.Context, email string, purpose OtpPurpose, code string) (*OtpChallenge, error)
	Sweep(ctx context.Context) (int64, error)
}

type otpService struct {
	repository    OtpChallengeRepository
	resendService resend.ResendService
	fromEmail     string
	logger        zerolog.Logger
}

var _ OtpService = (*otpService)(nil)

func NewOtpService(repository OtpChallengeRepository, resendService resend.ResendService, fromEmail string, logger zerolog.Logger) OtpService {
	return &otpService{
		repository:    repository,
		resendService: resendService,
		fromEmail:     fromEmail,
		logger:        logger,
	}
}

// Issue creates or refreshes the single challenge an email may hold. The
// cooldown applies to the email, not the purpose, so a throttled signin
// challenge cannot be sidestepped by requesting a reset code. A pending
// challenge past the cooldown keeps its code; only the cooldown window moves
// (and the purpose is re-stamped), so a mailbox full of resend requests still
// converges on a single valid code.
func (s *otpService) Issue(ctx context.Context, email string, purpose OtpPurpose) (*OtpChallengeResponse, error) {
	now := time.Now()

	existing, err := s.repository.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing challenge: %w", err)
	}

	if existing != nil && !existing.IsVerified && !existing.IsExpired(now) {
		if !existing.CanResend(now) {
			return nil, &ThrottledError{RetryAfter: existing.NextResendAllowedAt.Sub(now)}
		}

		extended, err := s.repository.ExtendResendWindow(ctx, existing.ID, purpose, now.Add(OtpResendDelay))
		if err != nil {
			return nil, fmt.Errorf("failed to extend resend window: %w", err)
		}
		if extended == nil {
			return nil, ErrOtpNotFoundOrExpired
		}

		// The stored digest cannot be reversed, so the resend mail reminds
		// the user that the earlier code is still valid.
		s.sendReminderEmail(ctx, email, extended.ExpiresAt)

		return extended.ToResponse(), nil
	}

	code, err := generateOtpCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp code: %w", err)
	}

	challenge := &OtpChallenge{
		Email:               email,
		Purpose:             purpose,
		CodeHash:            HashOtpCode(code),
		Attempts:            0,
		IsVerified:          false,
		ExpiresAt:           now.Add(OtpCodeExpiry),
		NextResendAllowedAt: now.Add(OtpResendDelay),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	created, err := s.repository.Replace(ctx, challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to store otp challenge: %w", err)
	}

	// The challenge is committed and verifiable at this point; a delivery
	// failure must not roll it back.
	s.sendCodeEmail(ctx, email, purpose, code)

	return created.ToResponse(), nil
}

// Verify checks a presented code against the stored challenge. The lookup is
// by email alone; the stored purpose must match the claimed one, since the
// email holds a single challenge at a time. The checks run in a fixed order
// so the caller always learns the most actionable failure: missing, burned
// out, consumed, expired, then wrong code. A wrong code bumps the attempt
// counter atomically before reporting the mismatch.
func (s *otpService) Verify(ctx context.Context, email string, purpose OtpPurpose, code string) (*OtpChallenge, error) {
	now := time.Now()

	challenge, err := s.repository.Get(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up challenge: %w", err)
	}

	if challenge == nil || challenge.Purpose != purpose {
		return nil, ErrOtpNotFoundOrExpired
	}

	if challenge.Attempts >= OtpMaxAttempts {
		return nil, ErrOtpMaxAttemptsReached
	}

	if challenge.IsVerified {
		return nil, ErrOtpAlreadyVerified
	}

	if challenge.IsExpired(now) {
		return nil, ErrOtpExpired
	}

	presented := HashOtpCode(code)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(challenge.CodeHash)) != 1 {
		if _, err := s.repository.IncrementAttempts(ctx, challenge.ID); err != nil {
			return nil, fmt.Errorf("failed to record otp attempt: %w", err)
		}
		return nil, ErrInvalidOtpCode
	}

	verified, err := s.repository.MarkVerified(ctx, challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark challenge verified: %w", err)
	}
	if verified == nil {
		return nil, ErrOtpNotFoundOrExpired
	}

	if _, err := s.repository.DeleteForEmail(ctx, email); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to clear consumed otp challenge")
	}

	return verified, nil
}

// Sweep removes consumed and expired challenges.
func (s *otpService) Sweep(ctx context.Context) (int64, error) {
	deleted, err := s.repository.DeleteVerifiedOrExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (s *otpService) sendCodeEmail(ctx context.Context, email string, purpose OtpPurpose, code string) {
	if s.resendService == nil {
		return
	}

	template := templateForPurpose(purpose, code)
	request := &resend.EmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: template.Subject,
		Html:    template.HtmlBody,
		Text:    template.TextBody,
	}

	if _, err := s.resendService.SendEmail(ctx, request); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to send verification email")
	}
}

func (s *otpService) sendReminderEmail(ctx context.Context, email string, expiresAt time.Time) {
	if s.resendService == nil {
		return
	}

	remaining := time.Until(expiresAt).Round(time.Second)
	request := &resend.EmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: "Your Verification Code Is Still Valid",
		Html:    fmt.Sprintf("<p>The verification code we sent you earlier is still valid for %s.</p>", remaining),
		Text:    fmt.Sprintf("The verification code we sent you earlier is still valid for %s.", remaining),
	}

	if _, err := s.resendService.SendEmail(ctx, request); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to send otp reminder email")
	}
}

func generateOtpCode() (string, error) {
	max := big.NewInt(1000000)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

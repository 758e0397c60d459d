package account

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	ResetTokenCookie   = "hashedResetPasswordToken"
	ResetExpiryCookie  = "resetPasswordExpiry"
)

type HandlerConfig struct {
	CookieDomain string
	Production   bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type AccountHandler struct {
	service AccountService
	config  HandlerConfig
	logger  zerolog.Logger
}

func NewAccountHandler(service AccountService, config HandlerConfig, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		config:  config,
		logger:  logger,
	}
}

func (h *AccountHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if req.Email == "" || req.Name == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request",
			"message": "Email, name and password are required",
		})
	}

	account, err := h.service.Signup(c.Context(), &req)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"data":    account,
	})
}

func (h *AccountHandler) Signin(c *fiber.Ctx) error {
	var req SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	challenge, err := h.service.Signin(c.Context(), &req)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Verification code sent to your email",
		"data":    challenge,
	})
}

func (h *AccountHandler) GoogleSignin(c *fiber.Ctx) error {
	var req FederatedSigninRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	signin, err := h.service.FederatedSignin(c.Context(), ProviderGoogle, &req)
	if err != nil {
		return h.renderError(c, err)
	}

	h.setAuthCookies(c, signin.AccessToken, signin.RefreshToken)

	return c.JSON(fiber.Map{
		"message": "Signed in successfully",
		"data":    signin.Account,
	})
}

func (h *AccountHandler) RequestOtp(c *fiber.Ctx) error {
	var req RequestOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	challenge, err := h.service.RequestOtp(c.Context(), &req)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Verification code sent to your email",
		"data":    challenge,
	})
}

func (h *AccountHandler) VerifyOtp(c *fiber.Ctx) error {
	var req VerifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	result, err := h.service.VerifyOtp(c.Context(), &req)
	if err != nil {
		return h.renderError(c, err)
	}

	switch result.Purpose {
	case OtpPurposeSignin, OtpPurposeEmailVerification:
		h.setAuthCookies(c, result.Signin.AccessToken, result.Signin.RefreshToken)
		return c.JSON(fiber.Map{
			"message": "Signed in successfully",
			"data":    result.Signin.Account,
		})

	case OtpPurposePasswordReset:
		h.setResetCookies(c, result.ResetToken, result.ResetTokenExpiry)
		return c.JSON(fiber.Map{
			"message": "Code verified, you may now reset your password",
		})

	case OtpPurposeDeleteAccount:
		h.clearAuthCookies(c)
		return c.JSON(fiber.Map{
			"message": "Account deactivated successfully",
		})

	default:
		return c.JSON(fiber.Map{
			"message": "Code verified successfully",
		})
	}
}

func (h *AccountHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies(RefreshTokenCookie)
	accessToken := c.Cookies(AccessTokenCookie)

	signin, err := h.service.RefreshTokens(c.Context(), refreshToken, accessToken)
	if err != nil {
		h.clearAuthCookies(c)
		return h.renderError(c, err)
	}

	h.setAuthCookies(c, signin.AccessToken, signin.RefreshToken)

	return c.JSON(fiber.Map{
		"message": "Tokens refreshed successfully",
		"data":    signin.Account,
	})
}

func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	if err := h.service.Logout(c.Context(), accountID); err != nil {
		return h.renderError(c, err)
	}

	h.clearAuthCookies(c)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

func (h *AccountHandler) GetProfile(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	profile, err := h.service.GetProfile(c.Context(), accountID)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile retrieved successfully",
		"data":    profile,
	})
}

// UpdateProfile accepts multipart form data so a display name change and an
// avatar upload can travel in one request.
func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	req := &UpdateProfileRequest{}

	if name := c.FormValue("name"); name != "" {
		req.Name = &name
	}

	if role := c.FormValue("role"); role != "" {
		req.Role = &role
	}

	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return badRequest(c, err)
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return badRequest(c, err)
		}

		req.Avatar = &AvatarUpload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Data:        data,
		}
	}

	profile, err := h.service.UpdateProfile(c.Context(), accountID, req)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"data":    profile,
	})
}

func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.service.ChangePassword(c.Context(), accountID, &req); err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

func (h *AccountHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	resetToken := c.Cookies(ResetTokenCookie)
	resetExpiry := parseResetExpiry(c.Cookies(ResetExpiryCookie))

	if err := h.service.ResetPassword(c.Context(), &req, resetToken, resetExpiry); err != nil {
		return h.renderError(c, err)
	}

	h.clearResetCookies(c)

	return c.JSON(fiber.Map{
		"message": "Password reset successfully",
	})
}

func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	accountID, err := currentAccountID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	var req DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.service.DeleteAccount(c.Context(), accountID, &req); err != nil {
		return h.renderError(c, err)
	}

	h.clearAuthCookies(c)

	message := "Account deactivated successfully"
	if req.Permanent {
		message = "Account deleted permanently"
	}

	return c.JSON(fiber.Map{
		"message": message,
	})
}

func (h *AccountHandler) ReactivateAccount(c *fiber.Ctx) error {
	var req ReactivateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	signin, err := h.service.Reactivate(c.Context(), &req)
	if err != nil {
		return h.renderError(c, err)
	}

	h.setAuthCookies(c, signin.AccessToken, signin.RefreshToken)

	return c.JSON(fiber.Map{
		"message": "Account reactivated successfully",
		"data":    signin.Account,
	})
}

func (h *AccountHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(h.cookie(AccessTokenCookie, accessToken, time.Now().Add(h.config.AccessTTL)))
	c.Cookie(h.cookie(RefreshTokenCookie, refreshToken, time.Now().Add(h.config.RefreshTTL)))
}

func (h *AccountHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(h.cookie(AccessTokenCookie, "", expired))
	c.Cookie(h.cookie(RefreshTokenCookie, "", expired))
}

func (h *AccountHandler) setResetCookies(c *fiber.Ctx, token string, expiry time.Time) {
	c.Cookie(h.cookie(ResetTokenCookie, token, expiry))
	c.Cookie(h.cookie(ResetExpiryCookie, expiry.UTC().Format(time.RFC3339), expiry))
}

func (h *AccountHandler) clearResetCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(h.cookie(ResetTokenCookie, "", expired))
	c.Cookie(h.cookie(ResetExpiryCookie, "", expired))
}

// cookie builds an http-only cookie. Production runs cross-site behind TLS,
// so it gets Secure plus SameSite=None; everything else stays on Lax.
func (h *AccountHandler) cookie(name, value string, expires time.Time) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.config.Production {
		sameSite = fiber.CookieSameSiteNoneMode
	}

	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Domain:   h.config.CookieDomain,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.config.Production,
		SameSite: sameSite,
	}
}

func (h *AccountHandler) renderError(c *fiber.Ctx, err error) error {
	status, retryAfter := classifyError(err)

	if retryAfter > 0 {
		c.Set("Retry-After", formatRetryAfterSeconds(retryAfter))
	}

	if status == fiber.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Something went wrong, please try again later",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   http.StatusText(status),
		"message": err.Error(),
	})
}

func classifyError(err error) (status int, retryAfter time.Duration) {
	var locked *LockedError
	if errors.As(err, &locked) {
		return fiber.StatusLocked, locked.RetryAfter
	}

	var throttled *ThrottledError
	if errors.As(err, &throttled) {
		return fiber.StatusTooManyRequests, throttled.RetryAfter
	}

	var pending *ReactivationPendingError
	if errors.As(err, &pending) {
		return fiber.StatusForbidden, pending.RetryAfter
	}

	switch {
	case errors.Is(err, ErrEmailAlreadyInUse):
		return fiber.StatusConflict, 0
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidResetToken):
		return fiber.StatusUnauthorized, 0
	case errors.Is(err, ErrAccountDeactivated),
		errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden, 0
	case errors.Is(err, ErrAccountNotFound):
		return fiber.StatusNotFound, 0
	case errors.Is(err, ErrOtpMaxAttemptsReached):
		return fiber.StatusTooManyRequests, 0
	case errors.Is(err, ErrProviderMismatch),
		errors.Is(err, ErrSamePassword),
		errors.Is(err, ErrEmailNotVerified),
		errors.Is(err, ErrOtpNotFoundOrExpired),
		errors.Is(err, ErrOtpAlreadyVerified),
		errors.Is(err, ErrOtpExpired),
		errors.Is(err, ErrInvalidOtpCode),
		errors.Is(err, ErrOtpNotVerified),
		errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest, 0
	default:
		return fiber.StatusInternalServerError, 0
	}
}

func currentAccountID(c *fiber.Ctx) (string, error) {
	accountID, ok := c.Locals("account_id").(string)
	if !ok || accountID == "" {
		return "", ErrUnauthorized
	}

	return accountID, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Invalid request body",
		"message": err.Error(),
	})
}

func parseResetExpiry(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return expiry
}

func formatRetryAfterSeconds(d time.Duration) string {
	seconds := int64((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.FormatInt(seconds, 10)
}

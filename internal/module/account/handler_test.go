package account

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestApp(service AccountService) (*fiber.App, *AccountHandler) {
	handler := NewAccountHandler(service, HandlerConfig{
		AccessTTL:  25 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, NopLogger())

	app := fiber.New()

	authed := func(c *fiber.Ctx) error {
		c.Locals("account_id", "68a1f2e4b9c3d5a7e8f90123")
		return c.Next()
	}

	app.Post("/signup", handler.Signup)
	app.Post("/signin", handler.Signin)
	app.Post("/signin/google", handler.GoogleSignin)
	app.Post("/otp/request", handler.RequestOtp)
	app.Post("/otp/verify", handler.VerifyOtp)
	app.Post("/refresh", handler.RefreshToken)
	app.Post("/logout", authed, handler.Logout)
	app.Get("/me", authed, handler.GetProfile)
	app.Patch("/me", authed, handler.UpdateProfile)
	app.Post("/change-password", authed, handler.ChangePassword)
	app.Post("/reset-password", handler.ResetPassword)
	app.Delete("/delete-account", authed, handler.DeleteAccount)
	app.Post("/reactivate", handler.ReactivateAccount)

	return app, handler
}

func jsonRequest(method, target string, body any) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func cookieValue(resp *http.Response, name string) (string, bool) {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie.Value, true
		}
	}
	return "", false
}

func TestAccountHandler_Signup(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Signup", mock.Anything, mock.AnythingOfType("*account.SignupRequest")).
			Return(CreateTestAccount().ToResponse(), nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signup", SignupRequest{
			Email:    "test@example.com",
			Name:     "Test User",
			Password: "correct-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		service.AssertExpectations(t)
	})

	t.Run("rejects missing fields before the service runs", func(t *testing.T) {
		service := &MockAccountService{}
		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signup", SignupRequest{
			Email: "test@example.com",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		service.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
	})

	t.Run("maps a duplicate email to conflict", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Signup", mock.Anything, mock.Anything).
			Return((*AccountResponse)(nil), ErrEmailAlreadyInUse)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signup", SignupRequest{
			Email:    "taken@example.com",
			Name:     "Test User",
			Password: "correct-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

func TestAccountHandler_Signin(t *testing.T) {
	t.Run("accepts credentials and reports the pending challenge", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Signin", mock.Anything, mock.Anything).
			Return(CreateTestOtpChallenge().ToResponse(), nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signin", SigninRequest{
			Email:    "test@example.com",
			Password: "correct-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		_, hasAccess := cookieValue(resp, AccessTokenCookie)
		assert.False(t, hasAccess)
	})

	t.Run("maps an active lockout to 423 with Retry-After", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Signin", mock.Anything, mock.Anything).
			Return((*OtpChallengeResponse)(nil), &LockedError{RetryAfter: 30 * time.Minute})

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signin", SigninRequest{
			Email:    "test@example.com",
			Password: "wrong-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusLocked, resp.StatusCode)
		assert.Equal(t, "1800", resp.Header.Get("Retry-After"))
	})

	t.Run("maps bad credentials to 401", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Signin", mock.Anything, mock.Anything).
			Return((*OtpChallengeResponse)(nil), ErrInvalidCredentials)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signin", SigninRequest{
			Email:    "test@example.com",
			Password: "wrong-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAccountHandler_VerifyOtp(t *testing.T) {
	t.Run("signin purpose sets the auth cookies", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("VerifyOtp", mock.Anything, mock.Anything).Return(&VerifyOtpResult{
			Purpose: OtpPurposeSignin,
			Signin: &SigninResponse{
				Account:      CreateTestAccount().ToResponse(),
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
			},
		}, nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/otp/verify", VerifyOtpRequest{
			Email:   "test@example.com",
			Purpose: string(OtpPurposeSignin),
			Code:    "123456",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		access, ok := cookieValue(resp, AccessTokenCookie)
		assert.True(t, ok)
		assert.Equal(t, "access-token", access)

		refresh, ok := cookieValue(resp, RefreshTokenCookie)
		assert.True(t, ok)
		assert.Equal(t, "refresh-token", refresh)
	})

	t.Run("password reset purpose sets the reset proof cookies", func(t *testing.T) {
		expiry := time.Now().Add(ResetPasswordTokenExpiry)
		service := &MockAccountService{}
		service.On("VerifyOtp", mock.Anything, mock.Anything).Return(&VerifyOtpResult{
			Purpose:          OtpPurposePasswordReset,
			ResetToken:       "reset-proof",
			ResetTokenExpiry: expiry,
		}, nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/otp/verify", VerifyOtpRequest{
			Email:   "test@example.com",
			Purpose: string(OtpPurposePasswordReset),
			Code:    "123456",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		token, ok := cookieValue(resp, ResetTokenCookie)
		assert.True(t, ok)
		assert.Equal(t, "reset-proof", token)

		rawExpiry, ok := cookieValue(resp, ResetExpiryCookie)
		assert.True(t, ok)
		parsed, err := time.Parse(time.RFC3339, rawExpiry)
		assert.NoError(t, err)
		assert.WithinDuration(t, expiry, parsed, time.Second)

		_, hasAccess := cookieValue(resp, AccessTokenCookie)
		assert.False(t, hasAccess)
	})

	t.Run("delete purpose clears the auth cookies", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("VerifyOtp", mock.Anything, mock.Anything).Return(&VerifyOtpResult{
			Purpose: OtpPurposeDeleteAccount,
		}, nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/otp/verify", VerifyOtpRequest{
			Email:   "test@example.com",
			Purpose: string(OtpPurposeDeleteAccount),
			Code:    "123456",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		access, ok := cookieValue(resp, AccessTokenCookie)
		assert.True(t, ok)
		assert.Empty(t, access)
	})

	t.Run("signup purpose confirms without touching cookies", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("VerifyOtp", mock.Anything, mock.Anything).Return(&VerifyOtpResult{
			Purpose: OtpPurposeSignup,
		}, nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/otp/verify", VerifyOtpRequest{
			Email:   "test@example.com",
			Purpose: string(OtpPurposeSignup),
			Code:    "123456",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Cookies())

		body := decodeBody(t, resp)
		assert.Equal(t, "Code verified successfully", body["message"])
	})

	t.Run("maps a wrong code to 400", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("VerifyOtp", mock.Anything, mock.Anything).
			Return((*VerifyOtpResult)(nil), ErrInvalidOtpCode)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/otp/verify", VerifyOtpRequest{
			Email:   "test@example.com",
			Purpose: string(OtpPurposeSignin),
			Code:    "000000",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("maps a burned out challenge to 429", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("VerifyOtp", mock.Anything, mock.Anything).
			Return((*VerifyOtpResult)(nil), ErrOtpMaxAttemptsReached)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/otp/verify", VerifyOtpRequest{
			Email:   "test@example.com",
			Purpose: string(OtpPurposeSignin),
			Code:    "000000",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	})
}

func TestAccountHandler_RequestOtp(t *testing.T) {
	t.Run("maps a throttled resend to 429 with Retry-After", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("RequestOtp", mock.Anything, mock.Anything).
			Return((*OtpChallengeResponse)(nil), &ThrottledError{RetryAfter: 42 * time.Second})

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/otp/request", RequestOtpRequest{
			Email:   "test@example.com",
			Purpose: string(OtpPurposeSignin),
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "42", resp.Header.Get("Retry-After"))
	})
}

func TestAccountHandler_RefreshToken(t *testing.T) {
	t.Run("rotates the cookie pair", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("RefreshTokens", mock.Anything, "old-refresh", "old-access").
			Return(&SigninResponse{
				Account:      CreateTestAccount().ToResponse(),
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
			}, nil)

		app, _ := newTestApp(service)

		req := jsonRequest(http.MethodPost, "/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "old-refresh"})
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "old-access"})

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		access, ok := cookieValue(resp, AccessTokenCookie)
		assert.True(t, ok)
		assert.Equal(t, "new-access", access)
		service.AssertExpectations(t)
	})

	t.Run("a failed refresh clears both cookies", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("RefreshTokens", mock.Anything, mock.Anything, mock.Anything).
			Return((*SigninResponse)(nil), ErrUnauthorized)

		app, _ := newTestApp(service)

		req := jsonRequest(http.MethodPost, "/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "stale-refresh"})

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		access, ok := cookieValue(resp, AccessTokenCookie)
		assert.True(t, ok)
		assert.Empty(t, access)
	})
}

func TestAccountHandler_Logout(t *testing.T) {
	t.Run("clears the auth cookies", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Logout", mock.Anything, "68a1f2e4b9c3d5a7e8f90123").Return(nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/logout", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		access, ok := cookieValue(resp, AccessTokenCookie)
		assert.True(t, ok)
		assert.Empty(t, access)
		assert.Equal(t, "accessToken", AccessTokenCookie)
		assert.Equal(t, "refreshToken", RefreshTokenCookie)
		service.AssertExpectations(t)
	})

	t.Run("a locked account cannot log out", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Logout", mock.Anything, "68a1f2e4b9c3d5a7e8f90123").
			Return(&LockedError{RetryAfter: 10 * time.Minute})

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/logout", nil))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusLocked, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
		assert.Empty(t, resp.Cookies())
	})
}

func TestAccountHandler_ResetPassword(t *testing.T) {
	t.Run("forwards the proof cookies and clears them on success", func(t *testing.T) {
		expiry := time.Now().Add(2 * time.Minute).UTC().Truncate(time.Second)
		service := &MockAccountService{}
		service.On("ResetPassword", mock.Anything, mock.Anything, "reset-proof", mock.MatchedBy(func(tm time.Time) bool {
			return tm.Equal(expiry)
		})).Return(nil)

		app, _ := newTestApp(service)

		req := jsonRequest(http.MethodPost, "/reset-password", ResetPasswordRequest{
			Email:       "test@example.com",
			NewPassword: "brand-new-password",
		})
		req.AddCookie(&http.Cookie{Name: ResetTokenCookie, Value: "reset-proof"})
		req.AddCookie(&http.Cookie{Name: ResetExpiryCookie, Value: expiry.Format(time.RFC3339)})

		resp, err := app.Test(req)

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		token, ok := cookieValue(resp, ResetTokenCookie)
		assert.True(t, ok)
		assert.Empty(t, token)
		service.AssertExpectations(t)
	})

	t.Run("a missing proof maps to 401", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("ResetPassword", mock.Anything, mock.Anything, "", time.Time{}).
			Return(ErrInvalidResetToken)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/reset-password", ResetPasswordRequest{
			Email:       "test@example.com",
			NewPassword: "brand-new-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	tests := []struct {
		name            string
		permanent       bool
		expectedMessage string
	}{
		{name: "soft delete", permanent: false, expectedMessage: "Account deactivated successfully"},
		{name: "permanent delete", permanent: true, expectedMessage: "Account deleted permanently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockAccountService{}
			service.On("DeleteAccount", mock.Anything, "68a1f2e4b9c3d5a7e8f90123", mock.Anything).Return(nil)

			app, _ := newTestApp(service)

			resp, err := app.Test(jsonRequest(http.MethodDelete, "/delete-account", DeleteAccountRequest{
				Password:  "correct-password",
				Permanent: tt.permanent,
			}))

			assert.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, tt.expectedMessage, body["message"])

			access, ok := cookieValue(resp, AccessTokenCookie)
			assert.True(t, ok)
			assert.Empty(t, access)
		})
	}
}

func TestAccountHandler_ReactivateAccount(t *testing.T) {
	t.Run("signs the restored account straight in", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Reactivate", mock.Anything, mock.Anything).Return(&SigninResponse{
			Account:      CreateTestAccount().ToResponse(),
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
		}, nil)

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/reactivate", ReactivateRequest{
			Email:    "test@example.com",
			Password: "correct-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		access, ok := cookieValue(resp, AccessTokenCookie)
		assert.True(t, ok)
		assert.Equal(t, "access-token", access)
	})

	t.Run("maps a pending waiting period to 403 with Retry-After", func(t *testing.T) {
		service := &MockAccountService{}
		service.On("Reactivate", mock.Anything, mock.Anything).
			Return((*SigninResponse)(nil), &ReactivationPendingError{RetryAfter: 2 * time.Hour})

		app, _ := newTestApp(service)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/reactivate", ReactivateRequest{
			Email:    "test@example.com",
			Password: "correct-password",
		}))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "7200", resp.Header.Get("Retry-After"))
	})
}

func TestAccountHandler_GetProfile(t *testing.T) {
	service := &MockAccountService{}
	service.On("GetProfile", mock.Anything, "68a1f2e4b9c3d5a7e8f90123").
		Return(CreateTestAccount().ToResponse(), nil)

	app, _ := newTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	service.AssertExpectations(t)
}

func TestAccountHandler_InternalErrorsStayGeneric(t *testing.T) {
	service := &MockAccountService{}
	service.On("GetProfile", mock.Anything, mock.Anything).
		Return((*AccountResponse)(nil), assert.AnError)

	app, _ := newTestApp(service)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotContains(t, body["message"], assert.AnError.Error())
}

func TestParseResetExpiry(t *testing.T) {
	valid := time.Now().UTC().Truncate(time.Second)

	assert.Equal(t, valid, parseResetExpiry(valid.Format(time.RFC3339)))
	assert.True(t, parseResetExpiry("").IsZero())
	assert.True(t, parseResetExpiry("not-a-timestamp").IsZero())
}

func TestFormatRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", formatRetryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "30", formatRetryAfterSeconds(30*time.Second))
	assert.Equal(t, "3600", formatRetryAfterSeconds(time.Hour))
}

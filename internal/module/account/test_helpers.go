package account

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/purinat/auth-account-server/package/argon2"
	"github.com/purinat/auth-account-server/package/jwt"
	"github.com/purinat/auth-account-server/package/resend"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *Account) (*Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, id primitive.ObjectID, updateData bson.M) (*Account, error) {
	args := m.Called(ctx, id, updateData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) UnsetFields(ctx context.Context, id primitive.ObjectID, fields ...string) (*Account, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) IncrementFailedAttempts(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) ResetLockout(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOtpChallengeRepository struct {
	mock.Mock
}

func (m *MockOtpChallengeRepository) Get(ctx context.Context, email string) (*OtpChallenge, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallenge), args.Error(1)
}

func (m *MockOtpChallengeRepository) Replace(ctx context.Context, challenge *OtpChallenge) (*OtpChallenge, error) {
	args := m.Called(ctx, challenge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallenge), args.Error(1)
}

func (m *MockOtpChallengeRepository) ExtendResendWindow(ctx context.Context, id primitive.ObjectID, purpose OtpPurpose, nextResendAllowedAt time.Time) (*OtpChallenge, error) {
	args := m.Called(ctx, id, purpose, nextResendAllowedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallenge), args.Error(1)
}

func (m *MockOtpChallengeRepository) IncrementAttempts(ctx context.Context, id primitive.ObjectID) (*OtpChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallenge), args.Error(1)
}

func (m *MockOtpChallengeRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) (*OtpChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallenge), args.Error(1)
}

func (m *MockOtpChallengeRepository) DeleteForEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOtpChallengeRepository) DeleteVerifiedOrExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockOtpService struct {
	mock.Mock
}

func (m *MockOtpService) Issue(ctx context.Context, email string, purpose OtpPurpose) (*OtpChallengeResponse, error) {
	args := m.Called(ctx, email, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallengeResponse), args.Error(1)
}

func (m *MockOtpService) Verify(ctx context.Context, email string, purpose OtpPurpose, code string) (*OtpChallenge, error) {
	args := m.Called(ctx, email, purpose, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallenge), args.Error(1)
}

func (m *MockOtpService) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockAvatarStore struct {
	mock.Mock
}

func (m *MockAvatarStore) Upload(ctx context.Context, accountID string, upload *AvatarUpload) (*Avatar, error) {
	args := m.Called(ctx, accountID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Avatar), args.Error(1)
}

func (m *MockAvatarStore) Remove(ctx context.Context, objectID string) error {
	args := m.Called(ctx, objectID)
	return args.Error(0)
}

type MockResendService struct {
	mock.Mock
}

func (m *MockResendService) SendEmail(ctx context.Context, request *resend.EmailRequest) (*resend.EmailResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.EmailResponse), args.Error(1)
}

func (m *MockResendService) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Signup(ctx context.Context, req *SignupRequest) (*AccountResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccountResponse), args.Error(1)
}

func (m *MockAccountService) Signin(ctx context.Context, req *SigninRequest) (*OtpChallengeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallengeResponse), args.Error(1)
}

func (m *MockAccountService) FederatedSignin(ctx context.Context, provider Provider, req *FederatedSigninRequest) (*SigninResponse, error) {
	args := m.Called(ctx, provider, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SigninResponse), args.Error(1)
}

func (m *MockAccountService) RequestOtp(ctx context.Context, req *RequestOtpRequest) (*OtpChallengeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OtpChallengeResponse), args.Error(1)
}

func (m *MockAccountService) VerifyOtp(ctx context.Context, req *VerifyOtpRequest) (*VerifyOtpResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerifyOtpResult), args.Error(1)
}

func (m *MockAccountService) RefreshTokens(ctx context.Context, refreshToken, accessToken string) (*SigninResponse, error) {
	args := m.Called(ctx, refreshToken, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SigninResponse), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	args := m.Called(ctx, accessToken, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResult), args.Error(1)
}

func (m *MockAccountService) Logout(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAccountService) GetProfile(ctx context.Context, accountID string) (*AccountResponse, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccountResponse), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, accountID string, req *UpdateProfileRequest) (*AccountResponse, error) {
	args := m.Called(ctx, accountID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AccountResponse), args.Error(1)
}

func (m *MockAccountService) ChangePassword(ctx context.Context, accountID string, req *ChangePasswordRequest) error {
	args := m.Called(ctx, accountID, req)
	return args.Error(0)
}

func (m *MockAccountService) ResetPassword(ctx context.Context, req *ResetPasswordRequest, resetToken string, resetExpiry time.Time) error {
	args := m.Called(ctx, req, resetToken, resetExpiry)
	return args.Error(0)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, req *DeleteAccountRequest) error {
	args := m.Called(ctx, accountID, req)
	return args.Error(0)
}

func (m *MockAccountService) Reactivate(ctx context.Context, req *ReactivateRequest) (*SigninResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SigninResponse), args.Error(1)
}

var (
	testPasswordHashOnce sync.Once
	testPasswordHash     string
)

// TestPasswordHash returns a cached argon2 hash of "correct-password" so the
// builders do not re-run the KDF for every test case.
func TestPasswordHash() string {
	testPasswordHashOnce.Do(func() {
		testPasswordHash = MustHashPassword("correct-password")
	})
	return testPasswordHash
}

func CreateTestAccount(overrides ...func(*Account)) *Account {
	now := time.Now()

	account := &Account{
		ID:              primitive.NewObjectID(),
		Email:           "test@example.com",
		Name:            "Test User",
		PasswordHash:    TestPasswordHash(),
		Provider:        ProviderLocal,
		Role:            RoleUser,
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, override := range overrides {
		override(account)
	}

	return account
}

func CreateTestOtpChallenge(overrides ...func(*OtpChallenge)) *OtpChallenge {
	now := time.Now()

	challenge := &OtpChallenge{
		ID:                  primitive.NewObjectID(),
		Email:               "test@example.com",
		Purpose:             OtpPurposeSignin,
		CodeHash:            HashOtpCode("123456"),
		Attempts:            0,
		IsVerified:          false,
		ExpiresAt:           now.Add(OtpCodeExpiry),
		NextResendAllowedAt: now.Add(OtpResendDelay),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	for _, override := range overrides {
		override(challenge)
	}

	return challenge
}

func NewTestTokenService() *jwt.TokenService {
	service, err := jwt.NewTokenService(jwt.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     25 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	if err != nil {
		panic(err)
	}
	return service
}

func MustHashPassword(password string) string {
	hash, err := argon2.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}

func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func StringPtr(s string) *string {
	return &s
}

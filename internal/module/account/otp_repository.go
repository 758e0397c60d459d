package account

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/purinat/auth-account-server/package/mongo"
)

const OtpCollectionName = "otp_challenges"

// OtpChallengeIndexes returns the index set for the challenge collection. The
// TTL index is a backstop behind the periodic sweep; it reaps documents the
// sweeper missed, one hour after creation.
func OtpChallengeIndexes() []driver.IndexModel {
	return []driver.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(3600),
		},
	}
}

type OtpChallengeRepository interface {
	Get(ctx context.Context, email string) (*OtpChallenge, error)
	Replace(ctx context.Context, challenge *OtpChallenge) (*OtpChallenge, error)
	ExtendResendWindow(ctx context.Context, id primitive.ObjectID, purpose OtpPurpose, nextResendAllowedAt time.Time) (*OtpChallenge, error)
	IncrementAttempts(ctx context.Context, id primitive.ObjectID) (*OtpChallenge, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) (*OtpChallenge, error)
	DeleteForEmail(ctx context.Context, email string) (int64, error)
	DeleteVerifiedOrExpired(ctx context.Context, now time.Time) (int64, error)
}

type otpChallengeRepository struct {
	repo mongo.Repository[OtpChallenge]
}

var _ OtpChallengeRepository = (*otpChallengeRepository)(nil)

func NewOtpChallengeRepository(mongoService *mongo.MongoService) OtpChallengeRepository {
	return &otpChallengeRepository{
		repo: mongo.NewRepository[OtpChallenge](mongoService, OtpCollectionName),
	}
}

// Get returns the single challenge for the email regardless of its verified
// or expired state. An email holds at most one active challenge, whatever its
// purpose; verification needs the stale document to report the precise
// failure reason.
func (r *otpChallengeRepository) Get(ctx context.Context, email string) (*OtpChallenge, error) {
	filter := bson.M{"email": email}

	result, err := r.repo.FindOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get otp challenge: %w", err)
	}

	return result, nil
}

// Replace drops any previous challenge for the email and inserts the new
// one, keeping at most one live document per email.
func (r *otpChallengeRepository) Replace(ctx context.Context, challenge *OtpChallenge) (*OtpChallenge, error) {
	filter := bson.M{"email": challenge.Email}
	if _, err := r.repo.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("failed to clear previous otp challenges: %w", err)
	}

	challenge.ID = primitive.NewObjectID()

	result, err := r.repo.Create(ctx, *challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to create otp challenge: %w", err)
	}

	return result, nil
}

// ExtendResendWindow moves the cooldown forward on the existing document and
// re-stamps the purpose, so a resend under a different purpose re-binds the
// still-valid code instead of minting a parallel challenge.
func (r *otpChallengeRepository) ExtendResendWindow(ctx context.Context, id primitive.ObjectID, purpose OtpPurpose, nextResendAllowedAt time.Time) (*OtpChallenge, error) {
	update := bson.M{
		"$set": bson.M{
			"purpose":                purpose,
			"next_resend_allowed_at": nextResendAllowedAt,
			"updated_at":             time.Now(),
		},
	}

	result, err := r.repo.Update(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to extend otp resend window: %w", err)
	}

	return result, nil
}

// IncrementAttempts bumps the attempt counter atomically and returns the
// document after the increment, so concurrent wrong guesses cannot share a
// counter value.
func (r *otpChallengeRepository) IncrementAttempts(ctx context.Context, id primitive.ObjectID) (*OtpChallenge, error) {
	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.repo.Update(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to increment otp attempts: %w", err)
	}

	return result, nil
}

func (r *otpChallengeRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) (*OtpChallenge, error) {
	update := bson.M{
		"$set": bson.M{"is_verified": true, "updated_at": time.Now()},
	}

	result, err := r.repo.Update(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to mark otp challenge verified: %w", err)
	}

	return result, nil
}

func (r *otpChallengeRepository) DeleteForEmail(ctx context.Context, email string) (int64, error) {
	filter := bson.M{"email": email}

	deleted, err := r.repo.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete otp challenges: %w", err)
	}

	return deleted, nil
}

// DeleteVerifiedOrExpired removes every consumed or expired challenge in one
// pass; the sweeper calls this on its interval.
func (r *otpChallengeRepository) DeleteVerifiedOrExpired(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"is_verified": true},
			{"expires_at": bson.M{"$lte": now}},
		},
	}

	deleted, err := r.repo.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep otp challenges: %w", err)
	}

	return deleted, nil
}

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

const CollectionName = "accounts"

// AccountIndexes returns the index set for the accounts collection. Email is
// unique across live and soft-deleted documents alike, which is what makes a
// soft-deleted account block re-registration of its address.
func AccountIndexes() []driver.IndexModel {
	return []driver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "provider", Value: 1}, {Key: "provider_id", Value: 1}},
		},
	}
}

type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, updateData bson.M) (*Account, error)
	UnsetFields(ctx context.Context, id primitive.ObjectID, fields ...string) (*Account, error)
	IncrementFailedAttempts(ctx context.Context, id primitive.ObjectID) (*Account, error)
	ResetLockout(ctx context.Context, id primitive.ObjectID) (*Account, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type accountRepository struct {
	repo mongo.Repository[Account]
}

var _ AccountRepository = (*accountRepository)(nil)

func NewAccountRepository(mongoService *mongo.MongoService) AccountRepository {
	return &accountRepository{
		repo: mongo.NewRepository[Account](mongoService, CollectionName),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *Account) (*Account, error) {
	account.ID = primitive.NewObjectID()

	result, err := r.repo.Create(ctx, *account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return result, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	result, err := r.repo.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return result, nil
}

// GetByEmail matches soft-deleted documents too; callers decide how a deleted
// account affects their flow.
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	result, err := r.repo.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return result, nil
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.repo.Count(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("failed to check if email exists: %w", err)
	}

	return count > 0, nil
}

func (r *accountRepository) Update(ctx context.Context, id primitive.ObjectID, updateData bson.M) (*Account, error) {
	updateData["updated_at"] = time.Now()

	result, err := r.repo.Update(ctx, bson.M{"_id": id}, bson.M{"$set": updateData})
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return result, nil
}

func (r *accountRepository) UnsetFields(ctx context.Context, id primitive.ObjectID, fields ...string) (*Account, error) {
	unset := bson.M{}
	for _, field := range fields {
		unset[field] = ""
	}

	update := bson.M{
		"$unset": unset,
		"$set":   bson.M{"updated_at": time.Now()},
	}

	result, err := r.repo.Update(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to unset account fields: %w", err)
	}

	return result, nil
}

// IncrementFailedAttempts bumps the failure counter atomically and returns
// the document after the increment. Concurrent failed signins each observe a
// distinct counter value, so exactly one of them crosses the lockout
// threshold.
func (r *accountRepository) IncrementFailedAttempts(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	update := bson.M{
		"$inc": bson.M{"failed_login_attempts": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.repo.Update(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to increment failed login attempts: %w", err)
	}

	return result, nil
}

func (r *accountRepository) ResetLockout(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	update := bson.M{
		"$set":   bson.M{"failed_login_attempts": 0, "updated_at": time.Now()},
		"$unset": bson.M{"lock_until": ""},
	}

	result, err := r.repo.Update(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to reset lockout state: %w", err)
	}

	return result, nil
}

func (r *accountRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := r.repo.Delete(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return nil
}

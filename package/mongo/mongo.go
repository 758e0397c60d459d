package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoConfig struct {
	URL      string
	Database string
}

type HealthStatus struct {
	Connected bool          `json:"connected"`
	Database  string        `json:"database"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
}

type MongoService struct {
	client   *mongo.Client
	database *mongo.Database
	config   MongoConfig
	mu       sync.RWMutex
}

// Repository is a thin typed wrapper over a single collection. Update and
// UpdateMany take full update documents ($set/$inc/$unset) so callers can
// express atomic field mutations without read-modify-write cycles.
type Repository[T any] interface {
	Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error)
	FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*T, error)
	Create(ctx context.Context, document T) (*T, error)
	Update(ctx context.Context, filter bson.M, update bson.M) (*T, error)
	Delete(ctx context.Context, filter bson.M) error
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
}

type GenericRepository[T any] struct {
	collection *mongo.Collection
}

func NewMongoService(config MongoConfig) (*MongoService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URL)
	clientOptions.SetMaxPoolSize(100)
	clientOptions.SetMinPoolSize(5)
	clientOptions.SetMaxConnIdleTime(30 * time.Second)
	clientOptions.SetConnectTimeout(10 * time.Second)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoService{
		client:   client,
		database: client.Database(config.Database),
		config:   config,
	}, nil
}

func (s *MongoService) HealthCheck(ctx context.Context) HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	status := HealthStatus{Database: s.config.Database}

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		status.Error = fmt.Sprintf("ping failed: %v", err)
		status.Latency = time.Since(start)
		return status
	}

	status.Connected = true
	status.Latency = time.Since(start)
	return status
}

func (s *MongoService) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client.Disconnect(ctx)
	}
	return nil
}

func (s *MongoService) GetCollection(name string) *mongo.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.database.Collection(name)
}

// EnsureIndexes creates the given indexes on a collection. Creation is
// idempotent on the server side, so it is safe to run at every startup.
func (s *MongoService) EnsureIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}

	_, err := s.GetCollection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
	}
	return nil
}

func NewRepository[T any](service *MongoService, collectionName string) Repository[T] {
	return &GenericRepository[T]{
		collection: service.GetCollection(collectionName),
	}
}

func (r *GenericRepository[T]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute find query: %w", err)
	}
	defer cursor.Close(ctx)

	var results []T
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode find results: %w", err)
	}

	return results, nil
}

func (r *GenericRepository[T]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	var result T
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to execute findOne query: %w", err)
	}

	return &result, nil
}

func (r *GenericRepository[T]) Create(ctx context.Context, document T) (*T, error) {
	result, err := r.collection.InsertOne(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	created, err := r.FindOne(ctx, bson.M{"_id": result.InsertedID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created document: %w", err)
	}

	return created, nil
}

// Update applies the update document atomically and returns the document as
// it is after the update. A nil result means nothing matched the filter.
func (r *GenericRepository[T]) Update(ctx context.Context, filter bson.M, update bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var result T
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return &result, nil
}

func (r *GenericRepository[T]) Delete(ctx context.Context, filter bson.M) error {
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("no document found matching filter")
	}

	return nil
}

// DeleteMany removes every document matching the filter. Zero matches is not
// an error; sweep jobs rely on that.
func (r *GenericRepository[T]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}

	return result.DeletedCount, nil
}

func (r *GenericRepository[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

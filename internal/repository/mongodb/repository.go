package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/config"
)

const (
	itemsCollection        = "items"
	reservationsCollection = "campDonationRequests"
	pledgesCollection      = "generalDonation"
	metricsCollection      = "apiMetrics"
)

// MongoDBRepository implements the inventory, reservation, pledge and metrics
// stores on top of a single MongoDB database.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*MongoDBRepository, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(cfg.Timeout)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := NewWithDatabase(client.Database(cfg.DBName), logger)
	repo.client = client
	return repo, nil
}

// NewWithDatabase builds a repository over an already connected database.
func NewWithDatabase(db *mongo.Database, logger *zap.Logger) *MongoDBRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoDBRepository{db: db, logger: logger}
}

// EnsureIndexes creates the indexes the query paths rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		itemsCollection: {
			{Keys: bsonKeys("disasterId", "_id")},
		},
		reservationsCollection: {
			{Keys: bsonKeys("disasterId", "status", "items.itemId")},
		},
		pledgesCollection: {
			{Keys: bsonKeys("disasterId", "status", "items.itemId")},
		},
		metricsCollection: {
			{Keys: bsonKeys("endpointName", "statusCode", "env"), Options: options.Index().SetUnique(true)},
		},
	}

	for name, idx := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Ping checks the server is reachable.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.db.Collection(name)
}

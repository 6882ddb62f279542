package replica

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
)

// MongoStore keeps one collection per kind with the entity id as _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, conf config.MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, mongoOptions(conf))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect -> %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(conf.Database),
	}, nil
}

// Mirror writes are a single attempt, so retryable writes are off.
func mongoOptions(conf config.MongoConfig) *options.ClientOptions {
	return options.Client().
		ApplyURI(conf.URI).
		SetRetryWrites(false).
		SetRetryReads(false)
}

func (s *MongoStore) Upsert(ctx context.Context, kind Kind, id uint, fields Fields) error {
	set := bson.M{}
	for k, v := range fields {
		val, err := bsonValue(v)
		if err != nil {
			return fmt.Errorf("field %s -> %w", k, err)
		}
		set[k] = val
	}

	_, err := s.db.Collection(string(kind)).UpdateOne(ctx,
		bson.M{"_id": int64(id)},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("collection.UpdateOne -> %w", err)
	}

	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func bsonValue(v any) (any, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return primitive.ParseDecimal128(val.String())
	case uint:
		return int64(val), nil
	case *uint:
		if val == nil {
			return nil, nil
		}
		return int64(*val), nil
	default:
		return normalize(v), nil
	}
}

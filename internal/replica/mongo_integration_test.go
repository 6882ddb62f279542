//go:build integration

package replica

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
)

type MongoStoreTestSuite struct {
	suite.Suite

	pool     *dockertest.Pool
	resource *dockertest.Resource
	store    *MongoStore
}

func TestMongoStoreTestSuite(t *testing.T) {
	suite.Run(t, new(MongoStoreTestSuite))
}

func (s *MongoStoreTestSuite) SetupSuite() {
	pool, err := dockertest.NewPool("")
	s.Require().NoError(err)
	s.Require().NoError(pool.Client.Ping())
	s.pool = pool

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	s.Require().NoError(err)
	s.Require().NoError(resource.Expire(120))
	s.resource = resource

	conf := config.MongoConfig{
		URI:      fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp")),
		Database: "lotto",
	}

	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		store, err := NewMongoStore(ctx, conf)
		if err != nil {
			return err
		}
		s.store = store

		return nil
	})
	s.Require().NoError(err)
}

func (s *MongoStoreTestSuite) TearDownSuite() {
	if s.store != nil {
		s.NoError(s.store.Close(context.Background()))
	}
	if s.resource != nil {
		s.NoError(s.pool.Purge(s.resource))
	}
}

func (s *MongoStoreTestSuite) find(kind Kind, id uint) bson.M {
	var doc bson.M
	err := s.store.db.Collection(string(kind)).
		FindOne(context.Background(), bson.M{"_id": int64(id)}).
		Decode(&doc)
	s.Require().NoError(err)

	return doc
}

func (s *MongoStoreTestSuite) TestUpsert_Merges() {
	ctx := context.Background()
	owner := uint(4)

	s.Require().NoError(s.store.Upsert(ctx, KindTicket, 12, Fields{
		"lid":    uint(12),
		"number": "123456",
		"price":  decimal.RequireFromString("80.50"),
		"status": "unsold",
		"uid":    (*uint)(nil),
	}))
	s.Require().NoError(s.store.Upsert(ctx, KindTicket, 12, Fields{"status": "sold", "uid": &owner}))

	doc := s.find(KindTicket, 12)
	s.Equal("123456", doc["number"])
	s.Equal("sold", doc["status"])
	s.Equal(int64(4), doc["uid"])

	price, ok := doc["price"].(primitive.Decimal128)
	s.Require().True(ok, "price is stored as Decimal128")
	s.Equal("80.5", price.String())
}

func (s *MongoStoreTestSuite) TestSyncer_OrderedWrites() {
	syncer := NewSyncer(s.store, 5*time.Second)

	for _, status := range []string{"unsold", "sold", "claimed"} {
		syncer.Mirror(context.Background(), KindTicket, 30, Fields{"status": status})
	}
	syncer.Wait()

	doc := s.find(KindTicket, 30)
	s.Equal("claimed", doc["status"])
	s.NotEmpty(doc["updated_at"])
}

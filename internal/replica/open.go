package replica

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
)

const (
	DriverNone  = "none"
	DriverRedis = "redis"
	DriverMongo = "mongo"
)

func Open(ctx context.Context, conf config.ReplicaConfig) (Store, error) {
	switch conf.Driver {
	case "", DriverNone:
		return NopStore{}, nil
	case DriverRedis:
		return NewRedisStore(ctx, conf.Redis)
	case DriverMongo:
		return NewMongoStore(ctx, conf.Mongo)
	default:
		return nil, fmt.Errorf("unknown replica driver %q", conf.Driver)
	}
}

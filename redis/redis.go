package redis

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Setup connects a client to the store at the given uri. The caller owns the
// returned client's lifecycle.
func Setup(uri string) (*redis.Client, error) {
	options, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

const ErrNil = redis.Nil

const TxFailedErr = redis.TxFailedErr

type Client = redis.Client

type Pipeliner = redis.Pipeliner

type Tx = redis.Tx

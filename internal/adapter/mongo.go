package adapter

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/registry"
)

type MongoPool struct {
	client *mongo.Client
}

// NewMongoPool connects a mongo client bounded to the target's configured
// max pool size. The driver manages its own pool internally, so Acquire
// hands out handles over the shared client rather than raw sockets.
func NewMongoPool(ctx context.Context, target registry.Target) (*MongoPool, error) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d/%s",
		target.Username, target.Password, target.Host, target.Port, target.Database)
	if target.Username == "" {
		uri = fmt.Sprintf("mongodb://%s:%d/%s", target.Host, target.Port, target.Database)
	}

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(uint64(target.MaxPoolSize)).
		SetServerSelectionTimeout(target.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoPool{client: client}, nil
}

func (p *MongoPool) Acquire(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, exhausted(err)
	}
	return &mongoConn{client: p.client}, nil
}

// ConnectionCount asks the server for its current connection total. The
// driver does not expose local pool occupancy.
func (p *MongoPool) ConnectionCount() int {
	var status struct {
		Connections struct {
			Current int `bson:"current"`
		} `bson:"connections"`
	}

	res := p.client.Database("admin").RunCommand(context.Background(), bson.D{{Key: "serverStatus", Value: 1}})
	if err := res.Decode(&status); err != nil {
		return 0
	}
	return status.Connections.Current
}

func (p *MongoPool) Close() {
	p.client.Disconnect(context.Background())
}

type mongoConn struct {
	client *mongo.Client
}

func (c *mongoConn) Liveness(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("liveness ping failed: %w", err)
	}
	return nil
}

func (c *mongoConn) ActiveQueries(ctx context.Context) (int, error) {
	var status struct {
		GlobalLock struct {
			ActiveClients struct {
				Total int `bson:"total"`
			} `bson:"activeClients"`
		} `bson:"globalLock"`
	}

	res := c.client.Database("admin").RunCommand(ctx, bson.D{{Key: "serverStatus", Value: 1}})
	if err := res.Decode(&status); err != nil {
		return 0, fmt.Errorf("failed to get active clients: %w", err)
	}
	return status.GlobalLock.ActiveClients.Total, nil
}

func (c *mongoConn) Release() {}

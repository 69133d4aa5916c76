//go:build integration || !unit

package mongo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotel_booking/internal/domain"
	mongostore "hotel_booking/internal/storage/mongo"
	"hotel_booking/internal/storage/storetest"
)

// startMongo runs a single-node replica set, which transactions require.
func startMongo(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
		Cmd:        []string{"--replSet", "rs0", "--bind_ip_all"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mongo: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://127.0.0.1:%s/?directConnection=true", resource.GetPort("27017/tcp"))

	// initiate the replica set once the server answers
	if err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		defer c.Disconnect(context.Background())
		cmd := bson.D{{Key: "replSetInitiate", Value: bson.D{
			{Key: "_id", Value: "rs0"},
			{Key: "members", Value: bson.A{bson.D{{Key: "_id", Value: 0}, {Key: "host", Value: "localhost:27017"}}}},
		}}}
		err = c.Database("admin").RunCommand(ctx, cmd).Err()
		var ce mongo.CommandError
		if err != nil && !(errors.As(err, &ce) && ce.Name == "AlreadyInitialized") {
			return err
		}
		return nil
	}); err != nil {
		t.Fatalf("init replica set: %v", err)
	}
	return uri
}

func TestRepo_Mongo(t *testing.T) {
	uri := startMongo(t)
	ctx := context.Background()

	var cl *mongostore.Client
	deadline := time.Now().Add(30 * time.Second)
	for {
		var err error
		cl, err = mongostore.NewClient(ctx, uri)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("waiting for primary: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Cleanup(func() { _ = cl.Close(context.Background()) })

	n := 0
	storetest.Run(t, func(t *testing.T) domain.Store {
		n++
		db, err := cl.DB(fmt.Sprintf("hotel_booking_%d", n))
		if err != nil {
			t.Fatalf("db: %v", err)
		}
		repo := mongostore.New(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			t.Fatalf("indexes: %v", err)
		}
		return repo
	})
}

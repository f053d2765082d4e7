package mgo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	mongoutil "MChat/data/database/mgo/mongoutil"
)

var (
	mu     sync.RWMutex
	client *mongoutil.Client
)

// Init connects the process-wide mongo client. Connection retry lives in
// mongoutil; a hard failure here is fatal for the caller to decide.
func Init(ctx context.Context, cfg *mongoutil.Config) error {
	cli, err := mongoutil.NewMongoDB(ctx, cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	client = cli
	mu.Unlock()
	return nil
}

// GetDB returns the shared database handle.
func GetDB() *mongo.Database {
	mu.RLock()
	defer mu.RUnlock()
	if client == nil {
		panic("mongo not initialized, call mgo.Init first")
	}
	return client.GetDB()
}

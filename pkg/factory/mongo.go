package factory

import (
	"context"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoConnection connects to the document database used by the
// mongodb store driver.
func NewMongoConnection(ctx context.Context, appCnf *config.AppConfig) error {
	info := appCnf.DatabaseInfo
	opts := options.Client().
		ApplyURI(info.MongoUri).
		SetConnectTimeout(10 * time.Second)

	if info.MaxOpenConns != nil && *info.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(*info.MaxOpenConns))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	db := client.Database(info.DBName)
	var buildInfo bson.M
	if err = db.RunCommand(pingCtx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&buildInfo); err == nil {
		appCnf.Logger.WithFields(logrus.Fields{
			"version": buildInfo["version"],
			"db":      info.DBName,
		}).Info("successfully connected to MongoDB")
	}

	appCnf.MongoDB = db
	return nil
}

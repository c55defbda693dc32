package helpers

import (
	"context"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/sirupsen/logrus"
)

func HandleCloseConnections() error {
	appCnf := config.GetConfig()
	if appCnf == nil {
		return nil
	}

	// handle to close DB connection
	if appCnf.DB != nil {
		db, err := appCnf.DB.DB()
		if err == nil {
			_ = db.Close()
		}
	}

	if appCnf.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = appCnf.MongoDB.Client().Disconnect(ctx)
		cancel()
	}

	// close redis
	if appCnf.RDS != nil {
		_ = appCnf.RDS.Close()
	}

	if appCnf.NatsConn != nil {
		_ = appCnf.NatsConn.Drain()
	}

	// close logger
	logrus.Exit(0)

	return nil
}

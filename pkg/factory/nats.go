package factory

import (
	"strings"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
	"github.com/sirupsen/logrus"
)

// NewNatsConnection connects to NATS when nats_urls are configured. Events
// are optional, so without urls nothing is done.
func NewNatsConnection(appCnf *config.AppConfig) error {
	info := appCnf.NatsInfo
	if len(info.NatsUrls) == 0 {
		appCnf.Logger.Infoln("nats_urls not set, event publishing disabled")
		return nil
	}

	opts := []nats.Option{
		nats.Name("bookmate-server"),
		nats.MaxReconnects(-1),
	}

	if info.Nkey != nil && *info.Nkey != "" {
		opt, err := nkeyOptionFromSeed(*info.Nkey)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	} else if info.User != "" {
		opts = append(opts, nats.UserInfo(info.User, info.Password))
	}

	nc, err := nats.Connect(strings.Join(info.NatsUrls, ","), opts...)
	if err != nil {
		return err
	}

	appCnf.Logger.WithFields(logrus.Fields{
		"version": nc.ConnectedServerVersion(),
		"address": nc.ConnectedAddr(),
	}).Info("successfully connected to NATS server")
	appCnf.NatsConn = nc

	return nil
}

func nkeyOptionFromSeed(seed string) (nats.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, err
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, err
	}

	return nats.Nkey(pub, func(nonce []byte) ([]byte, error) {
		return kp.Sign(nonce)
	}), nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nibzard/portfolio-go/internal/devices"
	"github.com/nibzard/portfolio-go/internal/mqtt"
	"github.com/nibzard/portfolio-go/internal/objstore"
	"github.com/nibzard/portfolio-go/internal/readings"
	"github.com/nibzard/portfolio-go/internal/store"
	"github.com/nibzard/portfolio-go/internal/table"
)

// openRegistry loads the device registry. A registry that cannot be read
// is only tolerated by commands that do not write it back.
func (a *app) openRegistry(writing bool) (*devices.Registry, error) {
	reg, err := devices.Open(store.New(a.cfg.DevicesFile, a.logger))
	if err != nil {
		if writing {
			return nil, fmt.Errorf("%w (fix or remove %s)", err, a.cfg.DevicesFile)
		}
		a.logger.Warn("starting with an empty registry", "err", err)
	}
	return reg, nil
}

// fetcher returns the readings client, behind the Redis cache when one is
// configured.
func (a *app) fetcher() (readings.Fetcher, func()) {
	client := readings.NewClient(a.cfg.API.URL, a.cfg.API.Key, readings.WithTimeout(a.cfg.APITimeout()))
	if a.cfg.Redis.Addr == "" {
		return client, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.logger.Debug("caching readings", "redis", a.cfg.Redis.Addr, "ttl", a.cfg.RedisTTL())
	return readings.NewCache(client, rdb, a.cfg.RedisTTL()), func() { _ = rdb.Close() }
}

// table opens the readings table: Azure Tables when configured, otherwise
// an in-process table.
func (a *app) table(ctx context.Context) (table.Table, error) {
	var (
		s   *table.Store
		err error
	)
	switch {
	case a.cfg.Table.ConnectionString != "":
		s, err = table.New(a.cfg.Table.ConnectionString, a.cfg.Table.Name)
	case a.cfg.Table.ServiceURL != "":
		s, err = table.NewFromURL(a.cfg.Table.ServiceURL, a.cfg.Table.Name)
	default:
		a.logger.Warn("no table configured, keeping readings in memory")
		return table.NewMemory(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.CreateIfMissing(ctx); err != nil {
		return nil, fmt.Errorf("create table %s: %w", a.cfg.Table.Name, err)
	}
	return s, nil
}

// mqttManager builds a manager from the mqtt settings. fallback receives
// messages on the configured topic when subscribe is true.
func (a *app) mqttManager(subscribe bool, fallback mqtt.Handler) *mqtt.Manager {
	c := a.cfg.MQTT
	opts := mqtt.Options{
		Broker:   c.Broker,
		ClientID: c.ClientID,
		Username: c.Username,
		Password: c.Password,
		QoS:      byte(c.QoS),
		CAFile:   c.CAFile,
		CertFile: c.CertFile,
		KeyFile:  c.KeyFile,
		Logger:   a.logger,
	}
	if subscribe {
		opts.Topic = c.Topic
	}
	return mqtt.New(opts, fallback)
}

func (a *app) uploader(ctx context.Context) (*objstore.Uploader, error) {
	return objstore.NewUploader(ctx, objstore.Options{
		Region:    a.cfg.S3.Region,
		AccessKey: a.cfg.S3.AccessKey,
		SecretKey: a.cfg.S3.SecretKey,
		Endpoint:  a.cfg.S3.Endpoint,
	})
}

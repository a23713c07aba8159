package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/crimetracker/crimetracker-api/config"
)

type redisMode string

const (
	redisDirect   redisMode = "direct"
	redisSentinel redisMode = "sentinel"
	redisCluster  redisMode = "cluster"
)

// redisTarget is a resolved Redis deployment. It never carries credentials
// into String, so it is safe to log.
type redisTarget struct {
	mode             redisMode
	addrs            []string
	username         string
	password         string
	db               int
	tls              *tls.Config
	masterName       string
	sentinelPassword string
}

func (t redisTarget) String() string {
	switch t.mode {
	case redisSentinel:
		return "sentinel:" + t.masterName
	case redisCluster:
		return "cluster:" + strings.Join(t.addrs, ",")
	default:
		return strings.Join(t.addrs, ",")
	}
}

// resolveRedisTarget picks the deployment mode and folds redis:// URIs into
// address, credentials, db and TLS. An explicit password wins over none in the URI.
func resolveRedisTarget(cfg config.RedisConfig) (redisTarget, error) {
	switch {
	case cfg.UseCluster:
		t := redisTarget{mode: redisCluster, addrs: normalizeAddrs(cfg.ClusterNodes), password: cfg.Password}
		if len(t.addrs) == 0 {
			if err := t.applyURI(cfg.URI); err != nil {
				return redisTarget{}, err
			}
		}
		if len(t.addrs) == 0 {
			return redisTarget{}, errors.New("redis cluster configuration requires at least one address")
		}
		t.db = 0 // cluster has a single keyspace
		return t, nil

	case cfg.UseSentinel:
		nodes := normalizeAddrs(cfg.SentinelNodes)
		if len(nodes) == 0 {
			return redisTarget{}, errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		return redisTarget{
			mode:             redisSentinel,
			addrs:            nodes,
			password:         cfg.Password,
			masterName:       cfg.SentinelMasterName,
			sentinelPassword: cfg.SentinelPassword,
		}, nil

	default:
		t := redisTarget{mode: redisDirect, password: cfg.Password}
		if err := t.applyURI(cfg.URI); err != nil {
			return redisTarget{}, err
		}
		if len(t.addrs) == 0 {
			return redisTarget{}, errors.New("redis direct configuration requires a URI")
		}
		return t, nil
	}
}

// applyURI accepts either host:port or a redis:// / rediss:// URL.
func (t *redisTarget) applyURI(raw string) error {
	uri := strings.TrimSpace(raw)
	if uri == "" {
		return nil
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		t.addrs = []string{uri}
		return nil
	}
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	t.addrs = []string{opt.Addr}
	t.username = opt.Username
	if opt.Password != "" {
		t.password = opt.Password
	}
	t.db = opt.DB
	t.tls = opt.TLSConfig
	return nil
}

//nolint:ireturn // callers work against redis.UniversalClient for every mode
func (t redisTarget) client() redis.UniversalClient {
	switch t.mode {
	case redisCluster:
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:     t.addrs,
			Username:  t.username,
			Password:  t.password,
			TLSConfig: t.tls,
		})
	case redisSentinel:
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       t.masterName,
			SentinelAddrs:    t.addrs,
			Password:         t.password,
			SentinelPassword: t.sentinelPassword,
		})
	default:
		return redis.NewClient(&redis.Options{
			Addr:      t.addrs[0],
			Username:  t.username,
			Password:  t.password,
			DB:        t.db,
			TLSConfig: t.tls,
		})
	}
}

// ConnectRedis builds the client for the configured mode and pings it.
//
//nolint:ireturn // single, sentinel and cluster clients share redis.UniversalClient
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	target, err := resolveRedisTarget(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	client := target.client()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis %s: %w", target.mode, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "mode", target.mode, "addr", target.String())
	}
	return client, nil
}

func normalizeAddrs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

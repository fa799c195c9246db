// Package redis opens the go-redis client used by the Redis bookmark store,
// retrying with exponential backoff until the server answers.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ConnectOptions describes the client and how long to wait for it.
type ConnectOptions struct {
	Addr     string // host:port
	User     string
	Password string
	RedisDB  int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // budget for all attempts together
	RetryInterval  time.Duration // first backoff, doubled after each failure
	MaxWait        time.Duration // backoff cap
	PingTimeout    time.Duration // per attempt
	WarnThreshold  int           // failed attempts logged at warn before switching to error
}

// validate reports every unusable retry setting at once.
func (o ConnectOptions) validate() error {
	var errs []error
	positive := []struct {
		name string
		v    time.Duration
	}{
		{"ConnectTimeout", o.ConnectTimeout},
		{"RetryInterval", o.RetryInterval},
		{"MaxWait", o.MaxWait},
		{"PingTimeout", o.PingTimeout},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", p.name, p.v))
		}
	}
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

func (o ConnectOptions) clientOptions() *redis.Options {
	return &redis.Options{
		Addr:         o.Addr,
		Username:     o.User,
		Password:     o.Password,
		DB:           o.RedisDB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
	}
}

type connector struct {
	opts   ConnectOptions
	client *redis.Client
	logger logger.Logger
}

// New creates a Redis client and blocks until it answers PING, ctx ends or
// ConnectTimeout elapses. The client is closed when no attempt succeeds.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	log = log.With(logger.Component("redis"))
	if err := opts.validate(); err != nil {
		log.Error("invalid redis connect options", logger.Error(err))
		return nil, fmt.Errorf("redis options: %w", err)
	}

	c := &connector{
		opts:   opts,
		client: redis.NewClient(opts.clientOptions()),
		logger: log,
	}
	if err := c.connect(ctx); err != nil {
		_ = c.client.Close()
		return nil, err
	}
	return c.client, nil
}

func (c *connector) connect(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, c.opts.ConnectTimeout)
	defer cancel()

	c.logger.Info("connecting to redis",
		logger.String("addr", c.opts.Addr),
		logger.Duration("timeout", c.opts.ConnectTimeout))

	started := time.Now()
	wait := c.opts.RetryInterval
	for attempt := 1; ; attempt++ {
		err := c.ping(ctx)
		if err == nil {
			c.connected(attempt, time.Since(started))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.logger.Error("redis unavailable, giving up",
				logger.String("addr", c.opts.Addr),
				logger.Int("attempts", attempt),
				logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				c.opts.Addr, attempt, c.opts.ConnectTimeout, err)
		case <-timer.C:
		}

		c.failed(attempt, timeLeft(ctx), wait, err)
		wait = backoff(wait, c.opts.MaxWait)
	}
}

func (c *connector) ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, c.opts.PingTimeout)
	defer cancel()
	return c.client.Ping(pingCtx).Err()
}

func (c *connector) connected(attempts int, elapsed time.Duration) {
	if attempts == 1 {
		c.logger.Info("connected to redis", logger.String("addr", c.opts.Addr))
		return
	}
	c.logger.Warn("connected to redis after retry",
		logger.String("addr", c.opts.Addr),
		logger.Int("attempts", attempts),
		logger.Duration("elapsed", elapsed))
}

// failed logs at warn for the first WarnThreshold attempts, then at error.
func (c *connector) failed(attempt int, remaining, wait time.Duration, err error) {
	fields := []logger.Field{
		logger.String("addr", c.opts.Addr),
		logger.Int("attempt", attempt),
		logger.Duration("remaining", remaining),
		logger.Duration("next_retry_in", wait),
		logger.Error(err),
	}
	if attempt <= c.opts.WarnThreshold && remaining >= 10*time.Second {
		c.logger.Warn("redis connection failed, retrying", fields...)
		return
	}
	c.logger.Error("redis still unavailable, retrying", fields...)
}

func backoff(wait, limit time.Duration) time.Duration {
	return min(wait*2, limit)
}

// timeLeft returns the remaining time before the context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/config"
	"github.com/iksnae/manoj-chat/internal/gateway"
	"github.com/iksnae/manoj-chat/internal/identity"
	"github.com/iksnae/manoj-chat/internal/session"
	"github.com/iksnae/manoj-chat/internal/store"
	"github.com/redis/go-redis/v9"
)

// errNotSignedIn is returned by commands that read server-side conversations.
var errNotSignedIn = errors.New("not signed in (run 'manoj-chat login --token <id-token>' first)")

// app holds the collaborators built from the resolved config.
type app struct {
	cfg     *config.Config
	gateway *gateway.Client
	store   *store.MessageStore
	jar     *identity.CookieJar
}

func newApp(c *config.Config) (*app, error) {
	if c == nil {
		return nil, errors.New("configuration not loaded")
	}

	jar, err := identity.OpenJar(c.CookiePath(identity.CookieFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie jar: %w", err)
	}

	messages, err := openMessageStore(c)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     c,
		gateway: newGatewayClient(c),
		store:   messages,
		jar:     jar,
	}, nil
}

func newGatewayClient(c *config.Config) *gateway.Client {
	return gateway.New(c.API.URL,
		gateway.WithTimeout(c.API.Timeout),
		gateway.WithLogger(internal.Logger()),
	)
}

func openMessageStore(c *config.Config) (*store.MessageStore, error) {
	opts := []store.Option{
		store.WithDir(c.Store.Dir),
		store.WithSQLitePath(c.Store.SQLitePath),
	}
	if store.Driver(c.Store.Driver) == store.DriverRedis {
		redisOpts, err := redis.ParseURL(c.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = append(opts,
			store.WithRedisClient(redis.NewClient(redisOpts)),
			store.WithRedisTTL(c.Redis.TTL),
		)
	}

	backend, err := store.Open(store.Driver(c.Store.Driver), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", c.Store.Driver, err)
	}
	internal.LogDebug("Using %s store", c.Store.Driver)
	return store.NewMessageStore(backend), nil
}

// identityKey returns the signed-in user's key, or errNotSignedIn.
func (a *app) identityKey() (string, error) {
	key, ok := identity.CookieIdentity{Jar: a.jar}.IdentityKey()
	if !ok {
		return "", errNotSignedIn
	}
	return key, nil
}

func (a *app) newSession(mode session.Mode, notifier session.Notifier) (*session.Session, error) {
	return session.New(mode,
		session.WithGateway(a.gateway),
		session.WithStore(a.store),
		session.WithIdentity(identity.CookieIdentity{Jar: a.jar}),
		session.WithNotifier(notifier),
		session.WithLogger(internal.Logger()),
	)
}

func (a *app) Close() error {
	return a.store.Close()
}

func modeFor(remote bool) session.Mode {
	if remote {
		return session.ModeRemote
	}
	return session.ModeLocal
}

package propdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey", "redis", "firestore" or "memory"
	addrs    []string
	password string

	projectID       string
	credentialsFile string

	keyPrefix     string
	collection    string
	geoSource     GeoSource
	emptyCriteria EmptyCriteria

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithFirestore configures the client to use Google Cloud Firestore.
// An empty credentialsFile uses application default credentials.
func WithFirestore(projectID, credentialsFile string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "firestore"
		c.projectID = projectID
		c.credentialsFile = credentialsFile
	})
}

// WithMemory keeps all listings in process memory. Useful for tests and demos.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithKeyPrefix sets the Valkey/Redis key prefix and the Firestore collection
// name prefix. Default: "propdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithCollection sets the listing collection name. Default: "properties".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithGeoSource selects where listing coordinates are read from for proximity search.
// Default: GeoSourceLocation.
func WithGeoSource(src GeoSource) Option {
	return optionFunc(func(c *clientConfig) {
		c.geoSource = src
	})
}

// WithEmptyCriteria sets what a query without any facet returns.
// Default: EmptyCriteriaAll.
func WithEmptyCriteria(p EmptyCriteria) Option {
	return optionFunc(func(c *clientConfig) {
		c.emptyCriteria = p
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

package propdex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/db"
	dbFirestore "github.com/kailas-cloud/propdex/internal/db/firestore"
	"github.com/kailas-cloud/propdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/propdex/internal/db/redis"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
	propertyrepo "github.com/kailas-cloud/propdex/internal/repository/property"
	"github.com/kailas-cloud/propdex/internal/logger"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	propertyuc "github.com/kailas-cloud/propdex/internal/usecase/property"
	searchuc "github.com/kailas-cloud/propdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "propdex:"
)

// listingUseCase is the internal interface for substitution in tests.
type listingUseCase interface {
	Create(ctx context.Context, caller propertyuc.Caller, drafts []listing.Draft, batch bool) propertyuc.Response
	Get(ctx context.Context, id string) propertyuc.Response
	Update(ctx context.Context, caller propertyuc.Caller, id string, d listing.Draft) propertyuc.Response
	Delete(ctx context.Context, caller propertyuc.Caller, id string) propertyuc.Response
	ListByOwner(ctx context.Context, caller propertyuc.Caller) propertyuc.Response
	Search(ctx context.Context, method string, c criteria.Criteria) propertyuc.Response
}

// Client is the propdex SDK entry point.
type Client struct {
	store      db.Store
	listings   listingUseCase
	healthSvc  healthUseCase
	collection string
	obs        *observer
	log        *zap.Logger
}

// New creates a propdex Client, connects to the database and ensures the listing index exists.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:     defaultKeyPrefix,
		geoSource:     GeoSourceLocation,
		emptyCriteria: EmptyCriteriaAll,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("propdex: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("propdex: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("propdex: database not ready: %w", err)
	}

	log := newZapLogger(cfg.logger)

	repoOpts := []propertyrepo.Option{propertyrepo.WithLogger(log)}
	if cfg.collection != "" {
		repoOpts = append(repoOpts, propertyrepo.WithCollection(cfg.collection))
	}
	repo := propertyrepo.New(store, repoOpts...)
	if err := repo.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("propdex: ensure schema: %w", err)
	}

	resolve, err := searchuc.ResolverFor(searchuc.GeoSource(cfg.geoSource))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("propdex: %w", err)
	}
	policy, err := propertyuc.ParseEmptyCriteriaPolicy(string(cfg.emptyCriteria))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("propdex: %w", err)
	}

	engine := searchuc.NewEngine(searchuc.DefaultStrategies(repo, resolve, log), log)

	return &Client{
		store:      store,
		listings:   propertyuc.New(repo, engine).WithEmptyCriteriaPolicy(policy),
		healthSvc:  healthuc.New(store),
		collection: repo.Collection(),
		obs:        obs,
		log:        log,
	}, nil
}

func (cfg *clientConfig) firestoreConfig() dbFirestore.Config {
	return dbFirestore.Config{
		ProjectID:        cfg.projectID,
		CredentialsFile:  cfg.credentialsFile,
		CollectionPrefix: cfg.keyPrefix,
	}
}

func openStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
	case "firestore":
		return dbFirestore.NewStore(ctx, cfg.firestoreConfig())
	case "memory":
		return memory.NewStore(), nil
	case "":
		return nil, errors.New("no database configured: use WithValkey, WithRedis, WithFirestore or WithMemory")
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.driver)
	}
}

// scoped attaches the client logger for facade code that logs via the context.
func (c *Client) scoped(ctx context.Context) context.Context {
	if c.log == nil {
		return ctx
	}
	return logger.ContextWithLogger(ctx, c.log)
}

// Close releases the database connection.
func (c *Client) Close() error {
	if c.store != nil {
		c.store.Close()
	}
	return nil
}

// Collection returns the name of the listing collection.
func (c *Client) Collection() string { return c.collection }

// Create persists one listing owned by owner.
func (c *Client) Create(ctx context.Context, owner Owner, d Draft) (_ Listing, err error) {
	defer func(start time.Time) { c.obs.observe(opCreate, start, 1, err) }(time.Now())

	draft, err := toDomainDraft(d)
	if err != nil {
		return Listing{}, err
	}
	resp := c.listings.Create(c.scoped(ctx), toCaller(owner), []listing.Draft{draft}, false)
	if err := responseErr(resp); err != nil {
		return Listing{}, err
	}
	return listingFromData(resp.Body.Data)
}

// CreateBatch persists all drafts atomically. Either every listing is stored or none is.
func (c *Client) CreateBatch(ctx context.Context, owner Owner, ds []Draft) (out []Listing, err error) {
	defer func(start time.Time) { c.obs.observe(opCreateBatch, start, len(out), err) }(time.Now())

	drafts := make([]listing.Draft, 0, len(ds))
	for i, d := range ds {
		draft, err := toDomainDraft(d)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		drafts = append(drafts, draft)
	}
	resp := c.listings.Create(c.scoped(ctx), toCaller(owner), drafts, true)
	if err := responseErr(resp); err != nil {
		return nil, err
	}
	return listingsFromData(resp.Body.Data)
}

// Get returns one listing by ID.
func (c *Client) Get(ctx context.Context, id string) (_ Listing, err error) {
	defer func(start time.Time) { c.obs.observe(opGet, start, 1, err) }(time.Now())

	resp := c.listings.Get(c.scoped(ctx), id)
	if err := responseErr(resp); err != nil {
		return Listing{}, err
	}
	return listingFromData(resp.Body.Data)
}

// Update replaces the business fields of a listing. Only the owner may update it.
func (c *Client) Update(ctx context.Context, owner Owner, id string, d Draft) (_ Listing, err error) {
	defer func(start time.Time) { c.obs.observe(opUpdate, start, 1, err) }(time.Now())

	draft, err := toDomainDraft(d)
	if err != nil {
		return Listing{}, err
	}
	resp := c.listings.Update(c.scoped(ctx), toCaller(owner), id, draft)
	if err := responseErr(resp); err != nil {
		return Listing{}, err
	}
	return listingFromData(resp.Body.Data)
}

// Delete removes a listing. Only the owner may delete it.
func (c *Client) Delete(ctx context.Context, owner Owner, id string) (err error) {
	defer func(start time.Time) { c.obs.observe(opDelete, start, 0, err) }(time.Now())

	return responseErr(c.listings.Delete(c.scoped(ctx), toCaller(owner), id))
}

// ListByOwner returns every listing created by owner.
func (c *Client) ListByOwner(ctx context.Context, owner Owner) (out []Listing, err error) {
	defer func(start time.Time) { c.obs.observe(opListByOwner, start, len(out), err) }(time.Now())

	resp := c.listings.ListByOwner(c.scoped(ctx), toCaller(owner))
	if err := responseErr(resp); err != nil {
		return nil, err
	}
	return listingsFromData(resp.Body.Data)
}

// Search returns listings matching every facet set in q, sorted by ID.
func (c *Client) Search(ctx context.Context, q Query) (out []Listing, err error) {
	defer func(start time.Time) { c.obs.observe(opSearch, start, len(out), err) }(time.Now())

	crit, err := toCriteria(q)
	if err != nil {
		return nil, err
	}
	resp := c.listings.Search(c.scoped(ctx), http.MethodPost, crit)
	if err := responseErr(resp); err != nil {
		return nil, err
	}
	return listingsFromData(resp.Body.Data)
}

// responseErr turns a non-2xx facade response back into a sentinel-wrapped error.
func responseErr(resp propertyuc.Response) error {
	switch {
	case resp.Status < http.StatusBadRequest:
		return nil
	case resp.Status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, resp.Body.Error)
	case resp.Status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.Status == http.StatusForbidden:
		return ErrForbidden
	case resp.Status == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("propdex: %s", resp.Body.Error)
	}
}

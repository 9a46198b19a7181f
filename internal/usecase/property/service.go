package property

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/listing"
	"github.com/kailas-cloud/propdex/internal/domain/search/criteria"
	"github.com/kailas-cloud/propdex/internal/logger"
)

// EmptyCriteriaPolicy decides what a search without any facet returns.
type EmptyCriteriaPolicy string

const (
	// EmptyCriteriaAll returns every listing.
	EmptyCriteriaAll EmptyCriteriaPolicy = "all"
	// EmptyCriteriaNone returns an empty list.
	EmptyCriteriaNone EmptyCriteriaPolicy = "none"
)

// ParseEmptyCriteriaPolicy validates a policy name. Empty means EmptyCriteriaAll.
func ParseEmptyCriteriaPolicy(s string) (EmptyCriteriaPolicy, error) {
	switch p := EmptyCriteriaPolicy(s); p {
	case "":
		return EmptyCriteriaAll, nil
	case EmptyCriteriaAll, EmptyCriteriaNone:
		return p, nil
	default:
		return "", fmt.Errorf("unknown empty criteria policy %q", s)
	}
}

// Service orchestrates listing use cases and maps their outcomes to responses.
type Service struct {
	repo     Repository
	searcher Searcher
	policy   EmptyCriteriaPolicy
}

// New creates a listing service with the EmptyCriteriaAll policy.
func New(repo Repository, searcher Searcher) *Service {
	return &Service{repo: repo, searcher: searcher, policy: EmptyCriteriaAll}
}

// WithEmptyCriteriaPolicy sets what an empty search returns.
func (s *Service) WithEmptyCriteriaPolicy(p EmptyCriteriaPolicy) *Service {
	if p != "" {
		s.policy = p
	}
	return s
}

// Create persists one draft, or all drafts atomically when batch is set.
func (s *Service) Create(ctx context.Context, caller Caller, drafts []listing.Draft, batch bool) Response {
	if !caller.Authenticated() {
		return ErrorResponse(domain.ErrUnauthenticated)
	}

	if batch {
		created, err := s.repo.CreateBatch(ctx, drafts, caller.UserID, caller.Email)
		if err != nil {
			return s.internal(ctx, "create batch", err)
		}
		return ok(http.StatusCreated, created)
	}

	if len(drafts) != 1 {
		return ErrorResponse(fmt.Errorf("%w: expected a single property", domain.ErrValidation))
	}
	created, err := s.repo.Create(ctx, drafts[0], caller.UserID, caller.Email)
	if err != nil {
		return s.internal(ctx, "create", err)
	}
	return ok(http.StatusCreated, created)
}

// Get returns one listing.
func (s *Service) Get(ctx context.Context, id string) Response {
	l, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return s.internal(ctx, "get", err)
	}
	if !found {
		return ErrorResponse(domain.ErrNotFound)
	}
	return ok(http.StatusOK, l)
}

// Update replaces the business fields of a listing owned by the caller.
func (s *Service) Update(ctx context.Context, caller Caller, id string, d listing.Draft) Response {
	if !caller.Authenticated() {
		return ErrorResponse(domain.ErrUnauthenticated)
	}
	if resp, allowed := s.authorize(ctx, caller, id); !allowed {
		return resp
	}

	updated, found, err := s.repo.Update(ctx, id, d)
	if err != nil {
		return s.internal(ctx, "update", err)
	}
	if !found {
		return ErrorResponse(domain.ErrNotFound)
	}
	return ok(http.StatusOK, updated)
}

// Delete removes a listing owned by the caller.
func (s *Service) Delete(ctx context.Context, caller Caller, id string) Response {
	if !caller.Authenticated() {
		return ErrorResponse(domain.ErrUnauthenticated)
	}
	if resp, allowed := s.authorize(ctx, caller, id); !allowed {
		return resp
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.internal(ctx, "delete", err)
	}
	if !deleted {
		return ErrorResponse(domain.ErrNotFound)
	}
	success := true
	return Response{Status: http.StatusOK, Body: Payload{Success: &success}}
}

// ListByOwner returns the caller's listings.
func (s *Service) ListByOwner(ctx context.Context, caller Caller) Response {
	if !caller.Authenticated() {
		return ErrorResponse(domain.ErrUnauthenticated)
	}
	ls, err := s.repo.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return s.internal(ctx, "list by owner", err)
	}
	return ok(http.StatusOK, ls)
}

// Search runs a faceted search. Only POST is accepted.
func (s *Service) Search(ctx context.Context, method string, c criteria.Criteria) Response {
	if method != http.MethodPost {
		return ErrorResponse(domain.ErrMethodNotAllowed)
	}

	res, err := s.searcher.Search(ctx, c)
	if err != nil {
		return s.internal(ctx, "search", err)
	}

	ls := res.Listings
	if !res.Applied {
		ls, err = s.emptyCriteria(ctx)
		if err != nil {
			return s.internal(ctx, "search", err)
		}
	}

	n := len(ls)
	return Response{Status: http.StatusOK, Body: Payload{Data: ls, Count: &n}}
}

func (s *Service) emptyCriteria(ctx context.Context) ([]listing.Listing, error) {
	if s.policy == EmptyCriteriaNone {
		return []listing.Listing{}, nil
	}
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })
	return all, nil
}

// authorize loads the listing and checks ownership. It returns the failure
// response and false when the caller may not mutate the listing.
func (s *Service) authorize(ctx context.Context, caller Caller, id string) (Response, bool) {
	l, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return s.internal(ctx, "get", err), false
	}
	if !found {
		return ErrorResponse(domain.ErrNotFound), false
	}
	if !l.IsOwnedBy(caller.UserID) {
		logger.FromContext(ctx).Info("Ownership check failed",
			zap.String("listing_id", id),
			zap.String("caller", caller.UserID),
		)
		return ErrorResponse(domain.ErrForbidden), false
	}
	return Response{}, true
}

func (s *Service) internal(ctx context.Context, op string, err error) Response {
	resp := ErrorResponse(fmt.Errorf("%s: %w", op, err))
	if resp.Status >= http.StatusInternalServerError {
		logger.FromContext(ctx).Error("Listing operation failed", zap.String("op", op), zap.Error(err))
	}
	return resp
}

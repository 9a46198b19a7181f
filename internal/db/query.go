package db

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/propdex/internal/domain/search/filter"
)

// Query selects documents in a collection matching every condition.
type Query struct {
	Collection string
	Conditions []filter.Condition
	// OrderBy names a field to sort ascending by. Empty means store order.
	OrderBy string
}

// Validate checks that the query is well-formed.
func (q *Query) Validate() error {
	if q.Collection == "" {
		return errors.New("collection is required")
	}
	if len(q.Conditions) > filter.MaxConditions {
		return fmt.Errorf("too many conditions (max %d)", filter.MaxConditions)
	}
	return nil
}

// Matches evaluates every condition against doc.
func (q *Query) Matches(doc Document) bool {
	for _, c := range q.Conditions {
		if !c.Matches(doc[c.Field()]) {
			return false
		}
	}
	return true
}

// SortDocuments orders docs by orderBy ascending, then by id.
// Documents missing the field sort last. Empty orderBy sorts by id only.
func SortDocuments(docs []Document, orderBy string) {
	sort.SliceStable(docs, func(i, j int) bool {
		if orderBy != "" {
			if c := compareValues(docs[i][orderBy], docs[j][orderBy]); c != 0 {
				return c < 0
			}
		}
		return fmt.Sprint(docs[i]["id"]) < fmt.Sprint(docs[j]["id"])
	})
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmpOrdered(x, y)
		}
	}
	// nil and mismatched kinds sort last
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return 0
}

func cmpOrdered[T float64 | string](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// BatchOp is a single full-document write inside a Batch.
type BatchOp struct {
	Collection string
	ID         string
	Doc        Document
}

// Batch accumulates writes for an atomic Commit.
type Batch struct {
	ops []BatchOp
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Set queues a full-document write.
func (b *Batch) Set(collection, id string, doc Document) *Batch {
	b.ops = append(b.ops, BatchOp{Collection: collection, ID: id, Doc: doc})
	return b
}

// Len returns the number of queued writes.
func (b *Batch) Len() int { return len(b.ops) }

// Ops returns the queued writes in insertion order.
func (b *Batch) Ops() []BatchOp { return b.ops }

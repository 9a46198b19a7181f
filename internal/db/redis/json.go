package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/propdex/internal/db"
)

// Get loads a document by ID. JSON.GET with "$" wraps the value in an array.
func (s *Store) Get(ctx context.Context, collection, id string) (db.Document, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(s.key(collection, id)).Args("$").Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return decodeRootArray(raw)
}

// Set stores a full document, replacing any existing one.
func (s *Store) Set(ctx context.Context, collection, id string, doc db.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}
	cmd := s.b().Arbitrary("JSON.SET").Keys(s.key(collection, id)).Args("$", string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// Update writes the given top-level fields of an existing document.
// EXISTS is queued in the same MULTI/EXEC as the writes, so a concurrent delete
// yields db.ErrKeyNotFound rather than a failed JSON.SET.
func (s *Store) Update(ctx context.Context, collection, id string, fields db.Document) error {
	key := s.key(collection, id)

	cmds := make(rueidis.Commands, 0, len(fields)+3)
	cmds = append(cmds, s.b().Multi().Build(), s.b().Exists().Key(key).Build())
	for name, value := range fields {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", name, err)
		}
		cmds = append(cmds, s.b().Arbitrary("JSON.SET").Keys(key).Args("$."+name, string(data)).Build())
	}
	cmds = append(cmds, s.b().Exec().Build())

	replies, err := s.execReplies(ctx, cmds)
	if err != nil {
		return err
	}
	if len(replies) == 0 {
		return &db.Error{Op: db.OpExec, Err: db.ErrTxAborted}
	}
	n, err := replies[0].AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpExists, Err: err}
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	for i := 1; i < len(replies); i++ {
		if err := replies[i].Error(); err != nil {
			return &db.Error{Op: db.OpJSONSet, Err: err}
		}
	}
	return nil
}

// Delete removes a document and reports whether it existed.
func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	n, err := s.do(ctx, s.b().Del().Key(s.key(collection, id)).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpDel, Err: err}
	}
	return n > 0, nil
}

// Commit applies every batch write inside a single MULTI/EXEC transaction.
func (s *Store) Commit(ctx context.Context, b *db.Batch) error {
	if b == nil || b.Len() == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, b.Len()+2)
	cmds = append(cmds, s.b().Multi().Build())
	for _, op := range b.Ops() {
		data, err := json.Marshal(op.Doc)
		if err != nil {
			return fmt.Errorf("encode document %s: %w", op.ID, err)
		}
		cmds = append(cmds, s.b().Arbitrary("JSON.SET").Keys(s.key(op.Collection, op.ID)).Args("$", string(data)).Build())
	}
	cmds = append(cmds, s.b().Exec().Build())

	return s.exec(ctx, cmds)
}

// exec sends MULTI ... EXEC and checks every reply including per-command EXEC results.
func (s *Store) exec(ctx context.Context, cmds rueidis.Commands) error {
	replies, err := s.execReplies(ctx, cmds)
	if err != nil {
		return err
	}
	for i := range replies {
		if err := replies[i].Error(); err != nil {
			return &db.Error{Op: db.OpJSONSet, Err: err}
		}
	}
	return nil
}

// execReplies sends MULTI ... EXEC, checks the queueing replies and returns the EXEC array.
func (s *Store) execReplies(ctx context.Context, cmds rueidis.Commands) ([]rueidis.RedisMessage, error) {
	results := s.client.DoMulti(ctx, cmds...)
	if len(results) == 0 {
		return nil, &db.Error{Op: db.OpExec, Err: db.ErrTxAborted}
	}
	for _, r := range results[:len(results)-1] {
		if err := r.Error(); err != nil {
			return nil, &db.Error{Op: db.OpExec, Err: err}
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, &db.Error{Op: db.OpExec, Err: db.ErrTxAborted}
		}
		return nil, &db.Error{Op: db.OpExec, Err: err}
	}
	return replies, nil
}

// decodeRootArray decodes the "[{...}]" reply of a "$" JSONPath read.
func decodeRootArray(raw string) (db.Document, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var docs []db.Document
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		if len(docs) == 0 || docs[0] == nil {
			return nil, db.ErrKeyNotFound
		}
		return docs[0], nil
	}
	var doc db.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

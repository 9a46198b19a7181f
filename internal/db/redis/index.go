package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/propdex/internal/db"
)

// CreateIndex creates an FT index from the given definition.
// Definitions scoped to a collection are renamed and prefixed with the
// store's key layout. The definition is remembered for query planning
// even when the index already exists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	def = s.resolve(def)

	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	err = s.do(ctx, cmd).Error()
	if err == nil || isRedisErr(err, "index already exists") {
		s.remember(def)
	}
	if err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	s.mu.Lock()
	for coll, def := range s.indexes {
		if def.Name == name {
			delete(s.indexes, coll)
		}
	}
	s.mu.Unlock()
	return nil
}

// IndexExists checks index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func (s *Store) resolve(def *db.IndexDefinition) *db.IndexDefinition {
	if def.Collection == "" {
		return def
	}
	out := *def
	out.Name = s.indexName(def.Collection)
	if len(out.Prefixes) == 0 {
		out.Prefixes = []string{s.collectionPrefix(def.Collection)}
	}
	return &out
}

func (s *Store) remember(def *db.IndexDefinition) {
	if def.Collection == "" {
		return
	}
	s.mu.Lock()
	s.indexes[def.Collection] = def
	s.mu.Unlock()
}

func (s *Store) lookupIndex(collection string) *db.IndexDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexes[collection]
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageJSON
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	default:
		return nil, errors.New("unknown field type")
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}

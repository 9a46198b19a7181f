package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain/search/filter"
)

// Query runs FT.AGGREGATE over the collection index and drains its cursor.
// Cursor reads are not bounded by MAXSEARCHRESULTS the way LIMIT paging is.
// String range conditions are applied here on the candidates and the result is
// ordered here, so every driver returns the same set in the same order.
func (s *Store) Query(ctx context.Context, q *db.Query) ([]db.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	idx := s.lookupIndex(q.Collection)
	queryStr, residual, err := buildQuery(q.Conditions, idx)
	if err != nil {
		return nil, err
	}

	name := s.indexName(q.Collection)
	if idx != nil {
		name = idx.Name
	}
	count := strconv.Itoa(s.pageSize)

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(
		name, queryStr,
		"LOAD", "1", "$",
		"WITHCURSOR", "COUNT", count,
		"DIALECT", "2",
	).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	post := &db.Query{Collection: q.Collection, Conditions: residual}
	var out []db.Document
	for {
		docs, cursor, err := parseCursorReply(raw)
		if err != nil {
			s.dropCursor(ctx, name, cursor)
			return nil, err
		}
		for _, doc := range docs {
			if post.Matches(doc) {
				out = append(out, doc)
			}
		}
		if cursor == 0 {
			break
		}

		read := s.b().Arbitrary("FT.CURSOR", "READ").Args(name, strconv.FormatInt(cursor, 10), "COUNT", count).Build()
		raw, err = s.do(ctx, read).ToArray()
		if err != nil {
			s.dropCursor(ctx, name, cursor)
			return nil, &db.Error{Op: db.OpCursorRead, Err: err}
		}
	}

	db.SortDocuments(out, q.OrderBy)
	return out, nil
}

// dropCursor releases a server cursor left open by a failed read. Errors are ignored:
// the server expires idle cursors on its own.
func (s *Store) dropCursor(ctx context.Context, index string, cursor int64) {
	if cursor == 0 {
		return
	}
	cmd := s.b().Arbitrary("FT.CURSOR", "DEL").Args(index, strconv.FormatInt(cursor, 10)).Build()
	_ = s.do(context.WithoutCancel(ctx), cmd).Error()
}

// --- Result parsing ---

// parseCursorReply reads [[total, ["$", json1], ["$", json2], ...], cursor].
func parseCursorReply(raw []rueidis.RedisMessage) ([]db.Document, int64, error) {
	if len(raw) != 2 {
		return nil, 0, fmt.Errorf("unexpected cursor reply of %d elements", len(raw))
	}
	cursor, err := raw[1].AsInt64()
	if err != nil {
		return nil, 0, fmt.Errorf("parse cursor: %w", err)
	}
	rows, err := raw[0].ToArray()
	if err != nil {
		return nil, cursor, fmt.Errorf("parse rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, cursor, nil
	}

	docs := make([]db.Document, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields, err := row.ToArray()
		if err != nil {
			continue
		}
		body, ok := parseFieldPairs(fields)["$"]
		if !ok {
			continue
		}
		doc, err := decodeRootArray(body)
		if err != nil {
			return nil, cursor, err
		}
		docs = append(docs, doc)
	}
	return docs, cursor, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery translates conditions into an FT.AGGREGATE query string.
// Numeric operands become NUMERIC ranges and string equality becomes a TAG match.
// String range conditions, such as the keyword prefix range, are returned as residual
// conditions for the caller to evaluate: TAG wildcards are capped by MINPREFIX and
// MAXPREFIXEXPANSIONS and would drop matches.
func buildQuery(conds []filter.Condition, idx *db.IndexDefinition) (string, []filter.Condition, error) {
	var (
		parts    []string
		residual []filter.Condition
	)

	byField := make(map[string][]filter.Condition)
	var fields []string
	for _, c := range conds {
		if _, ok := byField[c.Field()]; !ok {
			fields = append(fields, c.Field())
		}
		byField[c.Field()] = append(byField[c.Field()], c)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if idx != nil {
			if _, ok := idx.Field(field); !ok {
				return "", nil, fmt.Errorf("field %q is not indexed: %w", field, db.ErrUnsupportedFilter)
			}
		}
		for _, c := range byField[field] {
			if n, ok := c.Number(); ok {
				parts = append(parts, buildNumericFilter(field, c.Op(), n))
				continue
			}
			v, ok := c.String()
			if !ok {
				return "", nil, fmt.Errorf("operand of %q: %w", field, db.ErrUnsupportedFilter)
			}
			if c.Op() == filter.Equal {
				parts = append(parts, buildTagFilter(field, v))
				continue
			}
			residual = append(residual, c)
		}
	}

	if len(parts) == 0 {
		return "*", residual, nil
	}
	return strings.Join(parts, " "), residual, nil
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(key string, op filter.Op, v float64) string {
	minBound := "-inf"
	maxBound := "+inf"
	n := strconv.FormatFloat(v, 'g', -1, 64)

	switch op {
	case filter.Equal:
		minBound, maxBound = n, n
	case filter.GreaterOrEqual:
		minBound = n
	case filter.Greater:
		minBound = "(" + n
	case filter.LessOrEqual:
		maxBound = n
	case filter.Less:
		maxBound = "(" + n
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain/search/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, "")
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "")
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewID_Unique(t *testing.T) {
	s := NewStoreForTest(nil, "")
	a, b := s.NewID("properties"), s.NewID("properties")
	if a == "" || a == b {
		t.Fatalf("expected distinct IDs, got %q and %q", a, b)
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"short", "longer than input", false},
		{"", "", true},
	}
	for _, tc := range tests {
		if got := containsIgnoreCase(tc.s, tc.sub); got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- json.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.GET", "p:properties:abc", "$")).
		Return(mock.Result(mock.RedisString(`[{"id":"abc","city":"Springfield","price":250000}]`)))

	s := NewStoreForTest(c, "p:")
	doc, err := s.Get(context.Background(), "properties", "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["city"] != "Springfield" || doc["price"] != 250000.0 {
		t.Errorf("unexpected doc: %v", doc)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.GET", "properties:missing", "$")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c, "")
	_, err := s.Get(context.Background(), "properties", "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.SET" && cmd[1] == "properties:abc" && cmd[2] == "$" &&
				strings.Contains(cmd[3], `"city":"Springfield"`)
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c, "")
	err := s.Set(context.Background(), "properties", "abc", db.Document{"city": "Springfield"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "")
	err := s.Set(context.Background(), "properties", "abc", db.Document{"city": "x"})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

// execUpdate returns a DoMulti stub answering MULTI, the queued commands and EXEC with execReply.
func execUpdate(t *testing.T, wantCmds int, execReply rueidis.RedisMessage) func(context.Context, ...rueidis.Completed) []rueidis.RedisResult {
	t.Helper()
	return func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
		if len(cmds) != wantCmds {
			t.Fatalf("expected %d commands, got %d", wantCmds, len(cmds))
		}
		if got := cmds[1].Commands(); got[0] != "EXISTS" || got[1] != "properties:abc" {
			t.Fatalf("expected EXISTS queued inside MULTI, got %v", got)
		}
		out := make([]rueidis.RedisResult, 0, len(cmds))
		out = append(out, mock.Result(mock.RedisString("OK")))
		for range cmds[1 : len(cmds)-1] {
			out = append(out, mock.Result(mock.RedisString("QUEUED")))
		}
		return append(out, mock.Result(execReply))
	}
}

func TestUpdate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		DoAndReturn(execUpdate(t, 4, mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisError("ERR new objects must be created at the root"),
		)))

	s := NewStoreForTest(c, "")
	err := s.Update(context.Background(), "properties", "abc", db.Document{"price": 1.0})
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestUpdate_EmptyFieldsOnMissingKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		DoAndReturn(execUpdate(t, 3, mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c, "")
	if err := s.Update(context.Background(), "properties", "abc", nil); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		DoAndReturn(execUpdate(t, 5, mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("OK"),
			mock.RedisString("OK"),
		)))

	s := NewStoreForTest(c, "")
	err := s.Update(context.Background(), "properties", "abc", db.Document{"price": 1.0, "latitude": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdate_WriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		DoAndReturn(execUpdate(t, 4, mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisError("ERR wrong type"),
		)))

	s := NewStoreForTest(c, "")
	err := s.Update(context.Background(), "properties", "abc", db.Document{"price": 1.0})
	if !isDBError(err) || errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want bool
	}{
		{"existing", 1, true},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("DEL", "properties:abc")).
				Return(mock.Result(mock.RedisInt64(tt.n)))

			s := NewStoreForTest(c, "")
			got, err := s.Delete(context.Background(), "properties", "abc")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Delete = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommit_Empty(t *testing.T) {
	s := NewStoreForTest(nil, "")
	if err := s.Commit(context.Background(), db.NewBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCommit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisArray(mock.RedisString("OK"), mock.RedisString("OK"))),
		})

	s := NewStoreForTest(c, "")
	b := db.NewBatch().
		Set("properties", "a", db.Document{"id": "a"}).
		Set("properties", "b", db.Document{"id": "b"})
	if err := s.Commit(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCommit_Aborted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisNil()),
		})

	s := NewStoreForTest(c, "")
	err := s.Commit(context.Background(), db.NewBatch().Set("properties", "a", db.Document{"id": "a"}))
	if !errors.Is(err, db.ErrTxAborted) {
		t.Fatalf("expected ErrTxAborted, got %v", err)
	}
}

func TestCommit_QueueError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisError("ERR new objects must be created at the root")),
			mock.Result(mock.RedisError("EXECABORT Transaction discarded")),
		})

	s := NewStoreForTest(c, "")
	err := s.Commit(context.Background(), db.NewBatch().Set("properties", "a", db.Document{"id": "a"}))
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestDecodeRootArray(t *testing.T) {
	doc, err := decodeRootArray(`[{"a":"b"}]`)
	if err != nil || doc["a"] != "b" {
		t.Fatalf("array form: %v %v", doc, err)
	}
	doc, err = decodeRootArray(`{"a":"c"}`)
	if err != nil || doc["a"] != "c" {
		t.Fatalf("object form: %v %v", doc, err)
	}
	if _, err := decodeRootArray(`[]`); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("empty array: expected ErrKeyNotFound, got %v", err)
	}
}

// --- index.go tests ---

func testIndex() *db.IndexDefinition {
	return db.NewIndex("properties-idx").
		OnJSON().
		Collection("properties").
		Tag("city").
		SortableTag("title").
		Numeric("price").
		MustBuild()
}

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return slices.Equal(cmd[:7], []string{
				"FT.CREATE", "p:properties:idx", "ON", "JSON", "PREFIX", "1", "p:properties:",
			}) && slices.Contains(cmd, "CASESENSITIVE") && slices.Contains(cmd, "SORTABLE")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c, "p:")
	if err := s.CreateIndex(context.Background(), testIndex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx := s.lookupIndex("properties"); idx == nil || idx.Name != "p:properties:idx" {
		t.Errorf("index not remembered: %+v", idx)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c, "")
	err := s.CreateIndex(context.Background(), testIndex())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("expected ErrIndexExists, got %v", err)
	}
	if s.lookupIndex("properties") == nil {
		t.Error("existing index should still be remembered")
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "x:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, "")
	if err := s.DropIndex(context.Background(), "x:idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "x:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, "")
	exists, err := s.IndexExists(context.Background(), "x:idx")
	if err != nil || exists {
		t.Fatalf("IndexExists = %v, %v; want false, nil", exists, err)
	}
}

// --- search.go tests ---

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name         string
		conds        []filter.Condition
		want         string
		wantResidual int
	}{
		{"empty", nil, "*", 0},
		{
			"tag equality",
			[]filter.Condition{filter.Must("city", filter.Equal, "New York")},
			`@city:{New\ York}`, 0,
		},
		{
			"numeric range",
			[]filter.Condition{
				filter.Must("price", filter.GreaterOrEqual, 100000.0),
				filter.Must("price", filter.LessOrEqual, 300000.0),
			},
			"@price:[100000 +inf] @price:[-inf 300000]", 0,
		},
		{
			"prefix stays out of the server query",
			mustPrefix(t, "title", "Sunny"),
			"*", 2,
		},
		{
			"prefix with tag",
			append(mustPrefix(t, "title", "H"), filter.Must("city", filter.Equal, "Springfield")),
			"@city:{Springfield}", 2,
		},
		{
			"string lte",
			[]filter.Condition{filter.Must("title", filter.LessOrEqual, "x")},
			"*", 1,
		},
		{
			"exclusive numeric",
			[]filter.Condition{filter.Must("price", filter.Greater, 5.0)},
			"@price:[(5 +inf]", 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, residual, err := buildQuery(tt.conds, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("buildQuery = %q, want %q", got, tt.want)
			}
			if len(residual) != tt.wantResidual {
				t.Errorf("residual = %d conditions, want %d", len(residual), tt.wantResidual)
			}
		})
	}
}

func TestBuildQuery_UnindexedField(t *testing.T) {
	conds := []filter.Condition{filter.Must("owner_email", filter.Equal, "x")}
	if _, _, err := buildQuery(conds, testIndex()); !errors.Is(err, db.ErrUnsupportedFilter) {
		t.Fatalf("expected ErrUnsupportedFilter, got %v", err)
	}
}

// row is one FT.AGGREGATE row carrying the document under "$".
func row(json string) rueidis.RedisMessage {
	return mock.RedisArray(mock.RedisString("$"), mock.RedisString(json))
}

// cursorReply is [[total, rows...], cursor].
func cursorReply(total int64, cursor int64, rows ...rueidis.RedisMessage) rueidis.RedisResult {
	return mock.Result(mock.RedisArray(
		mock.RedisArray(append([]rueidis.RedisMessage{mock.RedisInt64(total)}, rows...)...),
		mock.RedisInt64(cursor),
	))
}

func mustPrefix(t *testing.T, field, p string) []filter.Condition {
	t.Helper()
	conds, err := filter.Prefix(field, p)
	if err != nil {
		t.Fatalf("prefix: %v", err)
	}
	return conds
}

func TestQuery_SingleBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.AGGREGATE" && cmd[1] == "properties:idx" &&
				cmd[2] == "@city:{Springfield}" && slices.Contains(cmd, "WITHCURSOR") &&
				!slices.Contains(cmd, "LIMIT")
		})).
		Return(cursorReply(2, 0,
			row(`[{"id":"b","city":"Springfield","title":"Attic"}]`),
			row(`{"id":"a","city":"Springfield","title":"Barn"}`),
		))

	s := NewStoreForTest(c, "")
	docs, err := s.Query(context.Background(), &db.Query{
		Collection: "properties",
		Conditions: []filter.Condition{filter.Must("city", filter.Equal, "Springfield")},
		OrderBy:    "title",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0]["id"] != "b" || docs[1]["id"] != "a" {
		t.Fatalf("expected title order [b a], got %v", docs)
	}
}

func TestQuery_DrainsCursorBeyondSearchResultCap(t *testing.T) {
	const (
		total    = 12000
		pageSize = 500
		cursorID = 42
	)

	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newStore(c, "", pageSize)

	served := 0
	page := func() rueidis.RedisResult {
		rows := make([]rueidis.RedisMessage, 0, pageSize)
		for i := 0; i < pageSize && served < total; i++ {
			rows = append(rows, row(fmt.Sprintf(`{"id":"%05d"}`, served)))
			served++
		}
		next := int64(cursorID)
		if served == total {
			next = 0
		}
		return cursorReply(total, next, rows...)
	}

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
			args := cmd.Commands()
			if slices.Contains(args, "LIMIT") {
				return mock.ErrorResult(errors.New("LIMIT exceeds maximum of 10000"))
			}
			switch {
			case args[0] == "FT.AGGREGATE":
				return page()
			case args[0] == "FT.CURSOR" && args[1] == "READ" && args[3] == "42" && args[5] == "500":
				return page()
			}
			t.Fatalf("unexpected command %v", args)
			return mock.Result(mock.RedisNil())
		}).Times(total / pageSize)

	docs, err := s.Query(context.Background(), &db.Query{Collection: "properties"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != total {
		t.Fatalf("expected %d docs, got %d", total, len(docs))
	}
	if docs[0]["id"] != "00000" || docs[total-1]["id"] != "11999" {
		t.Fatalf("unexpected bounds: %v .. %v", docs[0]["id"], docs[total-1]["id"])
	}
}

func TestQuery_OneCharacterKeyword(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.AGGREGATE" && cmd[2] == "*"
		})).
		Return(cursorReply(5, 0,
			row(`{"id":"1","title":"Hut"}`),
			row(`{"id":"2","title":"hall"}`),
			row(`{"id":"3","title":"House"}`),
			row(`{"id":"4","title":"Barn"}`),
			row(`{"id":"5","title":"H"}`),
		))

	s := NewStoreForTest(c, "")
	docs, err := s.Query(context.Background(), &db.Query{
		Collection: "properties",
		Conditions: mustPrefix(t, "title", "H"),
		OrderBy:    "title",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var titles []string
	for _, d := range docs {
		titles = append(titles, d["title"].(string))
	}
	if want := []string{"H", "House", "Hut"}; !slices.Equal(titles, want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
}

func TestQuery_CursorReadErrorDropsCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.AGGREGATE" })).
			Return(cursorReply(3, 9, row(`{"id":"a"}`))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "FT.CURSOR" && cmd[1] == "READ"
			})).
			Return(mock.ErrorResult(context.DeadlineExceeded)),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.CURSOR", "DEL", "properties:idx", "9")).
			Return(mock.Result(mock.RedisString("OK"))),
	)

	s := NewStoreForTest(c, "")
	docs, err := s.Query(context.Background(), &db.Query{Collection: "properties"})
	if !isDBError(err) || docs != nil {
		t.Fatalf("expected db.Error and no docs, got %v, %v", docs, err)
	}
}

func TestQuery_IndexNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("properties:idx: no such index")))

	s := NewStoreForTest(c, "")
	_, err := s.Query(context.Background(), &db.Query{Collection: "properties"})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestQuery_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "")
	_, err := s.Query(context.Background(), &db.Query{Collection: "properties"})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

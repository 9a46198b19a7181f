package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("doc:").
		Tag("category").
		Numeric("price").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "category" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want category TAG", idx.Fields[0])
	}
	if !idx.Fields[0].TagCaseSensitive || idx.Fields[0].TagSeparator != DefaultTagSeparator {
		t.Errorf("field[0] tag opts = %+v", idx.Fields[0])
	}
	if idx.Fields[1].Name != "price" || idx.Fields[1].Type != IndexFieldNumeric || !idx.Fields[1].Sortable {
		t.Errorf("field[1] = %+v, want sortable price NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_JSONPaths(t *testing.T) {
	idx := NewIndex("props:idx").
		OnJSON().
		Collection("properties").
		Prefix("props:").
		SortableTag("title").
		Numeric("latitude").
		MustBuild()

	if idx.Collection != "properties" {
		t.Errorf("collection = %q", idx.Collection)
	}
	f, ok := idx.Field("title")
	if !ok {
		t.Fatal("title field not found by alias")
	}
	if f.Name != "$.title" || !f.Sortable {
		t.Errorf("title field = %+v", f)
	}
	if _, ok := idx.Field("$.latitude"); ok {
		t.Error("lookup must use the alias, not the path")
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"empty name", NewIndex("").Tag("a"), "index name is required"},
		{"bad name", NewIndex("a b").Tag("a"), "invalid characters"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"duplicate", NewIndex("idx").Tag("a").Numeric("a"), "duplicate field name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("idx").OnJSON().Prefix("p:").Tag("city").Numeric("price").MustBuild()
	got := idx.String()
	want := "FT.CREATE idx ON JSON PREFIX p: SCHEMA $.city AS city TAG $.price AS price NUMERIC SORTABLE"
	if got != want {
		t.Errorf("String() =\n %q\nwant\n %q", got, want)
	}
}

func TestMustBuild_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

package db

// DefaultTagSeparator splits multi-value tags. Listing values are single
// strings that may contain commas, so a rarer separator is used.
const DefaultTagSeparator = "|"

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageHash,
		},
	}
}

// OnJSON sets the index storage type to JSON.
// Fields added afterwards are addressed by JSONPath and aliased to their name.
func (b *IndexBuilder) OnJSON() *IndexBuilder {
	b.def.StorageType = StorageJSON
	return b
}

// Collection records the logical collection the index covers.
func (b *IndexBuilder) Collection(name string) *IndexBuilder {
	b.def.Collection = name
	return b
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a sortable NUMERIC field to the index.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	f := b.field(name, IndexFieldNumeric)
	f.Sortable = true
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Tag adds a case-sensitive TAG field to the index.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.TagWithOpts(name, DefaultTagSeparator, true)
}

// SortableTag adds a case-sensitive sortable TAG field.
func (b *IndexBuilder) SortableTag(name string) *IndexBuilder {
	b.TagWithOpts(name, DefaultTagSeparator, true)
	b.def.Fields[len(b.def.Fields)-1].Sortable = true
	return b
}

// TagWithOpts adds a TAG field with custom separator and case sensitivity.
func (b *IndexBuilder) TagWithOpts(name, separator string, caseSensitive bool) *IndexBuilder {
	f := b.field(name, IndexFieldTag)
	f.TagSeparator = separator
	f.TagCaseSensitive = caseSensitive
	b.def.Fields = append(b.def.Fields, f)
	return b
}

func (b *IndexBuilder) field(name string, typ IndexFieldType) IndexField {
	if b.def.StorageType == StorageJSON {
		return IndexField{Name: "$." + name, Alias: name, Type: typ}
	}
	return IndexField{Name: name, Type: typ}
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

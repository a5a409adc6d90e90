package reldb

// Catalog is an in-memory, name-keyed registry of table and index
// schemas. Thread-safety is not required - the engine assumes
// sequential, single-process access.
type Catalog struct {
	tables  map[string]TableSchema
	indexes map[string]IndexSchema
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tables:  make(map[string]TableSchema),
		indexes: make(map[string]IndexSchema),
	}
}

// RegisterTable adds schema to the catalog. Fails with [KindSchema]
// if a table with this name is already registered.
func (c *Catalog) RegisterTable(schema TableSchema) error {
	if _, exists := c.tables[schema.Name]; exists {
		return newSchemaError("table %q already registered", schema.Name).withTable(schema.Name)
	}

	c.tables[schema.Name] = schema

	return nil
}

// Table looks up a table schema by name. Fails with [ErrNotFound] if
// unknown.
func (c *Catalog) Table(name string) (TableSchema, error) {
	schema, ok := c.tables[name]
	if !ok {
		return TableSchema{}, newNotFoundError("unknown table %q", name).withTable(name)
	}

	return schema, nil
}

// RegisterIndex adds schema to the catalog. Fails with [KindSchema] if
// an index with this name is already registered.
func (c *Catalog) RegisterIndex(schema IndexSchema) error {
	if _, exists := c.indexes[schema.Name]; exists {
		return newSchemaError("index %q already registered", schema.Name).withIndex(schema.Name)
	}

	c.indexes[schema.Name] = schema

	return nil
}

// Index looks up an index schema by name. Fails with [ErrNotFound] if
// unknown.
func (c *Catalog) Index(name string) (IndexSchema, error) {
	schema, ok := c.indexes[name]
	if !ok {
		return IndexSchema{}, newNotFoundError("unknown index %q", name).withIndex(name)
	}

	return schema, nil
}

// Indexes returns every registered index schema, in no particular
// order.
func (c *Catalog) Indexes() []IndexSchema {
	out := make([]IndexSchema, 0, len(c.indexes))
	for _, s := range c.indexes {
		out = append(out, s)
	}

	return out
}

// IndexesOn returns every index registered on table, in no particular
// order.
func (c *Catalog) IndexesOn(table string) []IndexSchema {
	var out []IndexSchema

	for _, s := range c.indexes {
		if s.Table == table {
			out = append(out, s)
		}
	}

	return out
}

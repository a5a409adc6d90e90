// Package reldb implements the core of a small single-node relational
// storage engine: a page-oriented heap-file storage layer with a
// slotted-page record format, an in-memory B+ tree secondary index
// synchronized with table mutations, and a pull-based physical
// execution pipeline (sequential scan, index equality/range scan,
// filter, projection, hash-materialized inner equi-join).
//
// A thin logical layer maps parsed SELECT/INSERT/DELETE statements
// (produced by an external parser - see [SelectQuery], [InsertQuery],
// [DeleteQuery]) into operator trees via a modest planner that
// recognizes single-column equality and range index opportunities.
//
// # Basic usage
//
//	cat := reldb.NewCatalog()
//	cfg := reldb.DefaultEngineConfig()
//	sm := reldb.NewStorageManager(cat, cfg)
//	im := reldb.NewIndexManager(sm, cat, cfg.BTreeOrder)
//	sm.SetIndexManager(im)
//
//	schema := reldb.TableSchema{
//	    Name: "students",
//	    Columns: []reldb.ColumnSchema{
//	        {Name: "id", Type: reldb.TypeInt},
//	        {Name: "name", Type: reldb.TypeVarchar, Length: 50},
//	        {Name: "active", Type: reldb.TypeBoolean},
//	    },
//	    Path: "/tmp/students.tbl",
//	}
//	sm.CreateTable(schema)
//	rid, err := sm.Insert("students", reldb.Record{Values: []reldb.Value{
//	    reldb.IntValue(1), reldb.VarcharValue("Alice"), reldb.BoolValue(true),
//	}})
//
// # Error handling
//
// Public APIs return [*Error], whose [Error.Kind] classifies the
// failure (schema, value, decode, page-full, not-found, I/O, or
// internal invariant violation). The one exception is a table-lock
// acquisition timeout from Insert or Delete, which is a plain wrapped
// error. Use [errors.Is] against the Err* sentinels (such as
// [ErrNotFound]) for classification, or [errors.As] to read the Kind.
package reldb

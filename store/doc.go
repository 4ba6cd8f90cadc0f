// Package store persists embedded table records and answers nearest
// neighbour queries over them.
//
// Every Build writes a complete generation directory and then atomically
// repoints CURRENT at it:
//
//	DATA_DIR/CURRENT
//	DATA_DIR/generations/<name>/manifest.json
//	DATA_DIR/generations/<name>/index.bin
//	DATA_DIR/generations/<name>/mapping.json
//	DATA_DIR/generations/<name>/records.db
//
// Index position i always belongs to mapping[i]; records.db stores that
// position next to each record so Verify can check the invariant in SQL.
package store

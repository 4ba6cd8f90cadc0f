// Package engine opens SQLite databases through the pure-Go modernc.org/sqlite
// driver and registers the vec_l2sq SQL function the record store uses to
// check stored embeddings.
package engine

// Package sentinel provides printing.SentinelStore implementations.
//
// A sentinel marks a document as already submitted to the printer so that a
// later run over an overlapping window does not print it again. Backends:
//   - FileStore: <dir>/<key>.pdf, holding the delivered document itself
//   - RedisStore: SET/EXISTS/DEL with an optional TTL
//   - S3Store: one object per key under a prefix
//   - GormStore: a print_sentinels table in SQLite or PostgreSQL
//   - MemoryStore: process-local, for tests and dry runs
package sentinel

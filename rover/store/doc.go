// Package store provides the rover store backends behind service.RoverStore.
//
// Backends:
//   - MemoryStore: a map guarded by an RWMutex, optionally writing through
//     to a Persistence (FilePersistence stores one JSON file per rover)
//   - SQLStore: database/sql over SQLite (mattn/go-sqlite3) or PostgreSQL
//     (pgx), with the schema managed by embedded goose migrations
//
// Open picks a backend from config.StoreConfig.
package store

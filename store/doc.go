// Package store provides the table store used by the query engine.
//
// A table is an ordered sequence of rows that share a column set. Tables
// are kept as flat files (CSV by default, Apache Parquet optionally) in a
// blob backend: a local directory or an S3 bucket.
//
// # Basic Usage
//
// Loading and saving a table from a directory of CSV files:
//
//	driver, err := store.NewDriverLocal("data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s := store.NewFileStore(driver, store.CSVCodec{})
//
//	users, err := s.Load(ctx, "users") // reads data/users.csv
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	users.Rows = append(users.Rows, store.Row{"id": "3", "name": "C"})
//	if err := s.Save(ctx, "users", users); err != nil {
//	    log.Fatal(err)
//	}
//
// # Caching
//
// Any Store can be wrapped with a read-through cache backed by process
// memory or Redis:
//
//	cache, _ := store.NewCacheMemory()
//	cached := store.NewCachedStore(s, cache, time.Minute)
//
// Save on a cached store drops the cached copy before writing through.
//
// # Errors
//
// Load returns an error matching ErrNotFound when the table does not
// exist, and Save returns an error matching ErrWrite when persisting fails.
// Use errors.Is to test for them.
package store

package config

import (
	"context"
	"testing"
	"time"

	"github.com/vegasq/flatsql/store"
	"gotest.tools/v3/assert"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	assert.Equal(t, config.DriverStorage, "local")
	assert.Equal(t, config.DriverCache, "none")
	assert.Equal(t, config.TableFormat, "csv")
	assert.Equal(t, config.CacheTTL, time.Minute)
	assert.Assert(t, config.Logger() != nil)
}

func TestFromEnv(t *testing.T) {
	config, err := NewConfig().FromEnv(lookupFrom(map[string]string{
		"FLATSQL_DRIVER_STORAGE":  "s3",
		"FLATSQL_TABLE_DIRECTORY": "data",
		"FLATSQL_CACHE_TTL":       "5s",
		"AMAZON_S3_BUCKET":        "tables",
		"REDIS_PORT":              "6380",
	}))
	assert.NilError(t, err)

	assert.Equal(t, config.DriverStorage, "s3")
	assert.Equal(t, config.TableDirectory, "data")
	assert.Equal(t, config.CacheTTL, 5*time.Second)
	assert.Equal(t, config.AmazonS3Bucket, "tables")
	assert.Equal(t, config.RedisPort, 6380)
	// Unset variables keep their defaults
	assert.Equal(t, config.TableFormat, "csv")
	assert.Equal(t, config.RedisHost, "127.0.0.1")
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := NewConfig().FromEnv(lookupFrom(map[string]string{"REDIS_PORT": "http"}))
	assert.ErrorContains(t, err, "invalid REDIS_PORT")

	_, err = NewConfig().FromEnv(lookupFrom(map[string]string{"FLATSQL_CACHE_TTL": "soon"}))
	assert.ErrorContains(t, err, "invalid FLATSQL_CACHE_TTL")
}

func TestStore_Local(t *testing.T) {
	config := NewConfig()
	config.TableDirectory = t.TempDir()

	tables, err := config.Store(context.Background())
	assert.NilError(t, err)

	table := store.Table{Columns: []string{"id"}, Rows: []store.Row{{"id": "1"}}}
	assert.NilError(t, tables.Save(context.Background(), "users", table))

	loaded, err := tables.Load(context.Background(), "users")
	assert.NilError(t, err)
	assert.DeepEqual(t, loaded, table)
}

func TestStore_Cached(t *testing.T) {
	config := NewConfig()
	config.TableDirectory = t.TempDir()
	config.TableFormat = "parquet"
	config.DriverCache = "memory"

	tables, err := config.Store(context.Background())
	assert.NilError(t, err)

	_, isCached := tables.(*store.CachedStore)
	assert.Assert(t, isCached)
}

func TestStore_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "storage driver",
			modify:  func(c *Config) { c.DriverStorage = "ftp" },
			wantErr: "invalid storage driver: ftp",
		},
		{
			name:    "table format",
			modify:  func(c *Config) { c.TableFormat = "xlsx" },
			wantErr: "invalid table format: xlsx",
		},
		{
			name:    "cache driver",
			modify:  func(c *Config) { c.DriverCache = "memcached" },
			wantErr: "invalid cache driver: memcached",
		},
		{
			name:    "missing directory",
			modify:  func(c *Config) { c.TableDirectory = "/nonexistent/flatsql" },
			wantErr: "storage driver local not ready",
		},
		{
			name:    "s3 without bucket",
			modify:  func(c *Config) { c.DriverStorage = "s3" },
			wantErr: "requires a bucket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewConfig()
			config.TableDirectory = t.TempDir()
			tt.modify(&config)

			_, err := config.Store(context.Background())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestS3Prefix(t *testing.T) {
	for directory, want := range map[string]string{
		".":      "",
		"":       "",
		"data":   "data/",
		"/data/": "data/",
		"a/b":    "a/b/",
	} {
		config := NewConfig()
		config.TableDirectory = directory
		assert.Equal(t, config.s3Prefix(), want, directory)
	}
}

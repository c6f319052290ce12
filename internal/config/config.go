// Package config assembles the table store from environment settings.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/vegasq/flatsql/store"
)

type Config struct {
	logger *slog.Logger
	// Drivers
	DriverStorage string `env:"FLATSQL_DRIVER_STORAGE"`
	DriverCache   string `env:"FLATSQL_DRIVER_CACHE"`
	// Tables
	TableDirectory string        `env:"FLATSQL_TABLE_DIRECTORY"`
	TableFormat    string        `env:"FLATSQL_TABLE_FORMAT"`
	CacheTTL       time.Duration `env:"FLATSQL_CACHE_TTL"`
	// Services
	AmazonS3AccessKeyID     string `env:"AMAZON_S3_ACCESS_KEY_ID"`
	AmazonS3AccessKeySecret string `env:"AMAZON_S3_ACCESS_KEY_SECRET"`
	AmazonS3Bucket          string `env:"AMAZON_S3_BUCKET"`
	AmazonS3Endpoint        string `env:"AMAZON_S3_ENDPOINT"`
	AmazonS3Region          string `env:"AMAZON_S3_REGION"`
	RedisHost               string `env:"REDIS_HOST"`
	RedisNumber             int    `env:"REDIS_NUMBER"`
	RedisPass               string `env:"REDIS_PASS"`
	RedisPort               int    `env:"REDIS_PORT"`
	RedisUser               string `env:"REDIS_USER"`
}

func NewConfig() Config {
	return Config{
		logger:         slog.Default(),
		DriverStorage:  "local",
		DriverCache:    "none",
		TableDirectory: ".",
		TableFormat:    "csv",
		CacheTTL:       time.Minute,
		RedisHost:      "127.0.0.1",
		RedisPort:      6379,
	}
}

// FromEnv overrides every field whose env variable lookup reports as set.
// Pass os.LookupEnv to read the process environment.
func (config Config) FromEnv(lookup func(string) (string, bool)) (Config, error) {
	value := reflect.ValueOf(&config).Elem()
	kind := value.Type()

	for i := 0; i < kind.NumField(); i++ {
		name, tagged := kind.Field(i).Tag.Lookup("env")
		if !tagged {
			continue
		}
		raw, set := lookup(name)
		if !set {
			continue
		}

		field := value.Field(i)
		switch field.Interface().(type) {
		case string:
			field.SetString(raw)
		case int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return config, fmt.Errorf("invalid %s: %w", name, err)
			}
			field.SetInt(int64(n))
		case time.Duration:
			d, err := time.ParseDuration(raw)
			if err != nil {
				return config, fmt.Errorf("invalid %s: %w", name, err)
			}
			field.SetInt(int64(d))
		}
	}

	return config, nil
}

func (config Config) WithLogger(logger *slog.Logger) Config {
	config.logger = logger
	return config
}

func (config Config) Logger() *slog.Logger {
	if config.logger == nil {
		return slog.Default()
	}
	return config.logger
}

func (config Config) Driver() (store.Driver, error) {
	switch config.DriverStorage {
	case "local":
		driver, err := store.NewDriverLocal(config.TableDirectory)
		if err != nil {
			return nil, err
		}
		return driver, nil
	case "s3":
		return store.NewDriverS3(store.S3Config{
			Endpoint:        config.AmazonS3Endpoint,
			Region:          config.AmazonS3Region,
			Bucket:          config.AmazonS3Bucket,
			AccessKeyID:     config.AmazonS3AccessKeyID,
			AccessKeySecret: config.AmazonS3AccessKeySecret,
			Prefix:          config.s3Prefix(),
		})
	}

	return nil, fmt.Errorf("invalid storage driver: %s", config.DriverStorage)
}

// s3Prefix treats the table directory as a key prefix inside the bucket.
func (config Config) s3Prefix() string {
	prefix := strings.Trim(config.TableDirectory, "/")
	if prefix == "." || prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (config Config) Codec() (store.Codec, error) {
	switch config.TableFormat {
	case "csv":
		return store.CSVCodec{}, nil
	case "parquet":
		return store.ParquetCodec{}, nil
	}

	return nil, fmt.Errorf("invalid table format: %s", config.TableFormat)
}

// Cache returns nil when caching is disabled.
func (config Config) Cache() (store.Cache, error) {
	switch config.DriverCache {
	case "none", "":
		return nil, nil
	case "memory":
		return store.NewCacheMemory()
	case "redis":
		return store.NewCacheRedis(store.CacheRedisConfig{
			Host:   config.RedisHost,
			Number: config.RedisNumber,
			Pass:   config.RedisPass,
			Port:   config.RedisPort,
			User:   config.RedisUser,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", config.DriverCache)
}

// Store builds the table store, checking that the storage driver can be
// reached.
func (config Config) Store(ctx context.Context) (store.Store, error) {
	driver, err := config.Driver()
	if err != nil {
		return nil, err
	}

	if err := driver.IsReady(ctx); err != nil {
		return nil, fmt.Errorf("storage driver %s not ready: %w", config.DriverStorage, err)
	}

	codec, err := config.Codec()
	if err != nil {
		return nil, err
	}

	cache, err := config.Cache()
	if err != nil {
		return nil, err
	}

	var tables store.Store = store.NewFileStore(driver, codec, store.WithLogger(config.Logger()))
	if cache != nil {
		tables = store.NewCachedStore(tables, cache, config.CacheTTL)
	}

	return tables, nil
}

// Package config holds the database-wide tunables: page size, buffer
// pool capacity, LRU-K, and the on-disk path. Adapted from the teacher's
// config.DBConfig, with the hand-rolled key=value/JSON sniffing loader
// replaced by viper (spec.md's ambient config stack, SPEC_FULL.md §9).
package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultPageSize is the fixed page size spec.md §4.1 calls out as "a fixed
// power of two (typical choice 4096)".
const DefaultPageSize = 4096

// MaxPageNo bounds the file at a large implementation limit (spec.md §4.1).
const MaxPageNo = 1 << 40

// DefaultCachePages is the buffer pool's fixed frame-table capacity.
const DefaultCachePages = 64

// DefaultEvictLRUK is the small constant K in LRU-K eviction (spec.md §4.6).
const DefaultEvictLRUK = 2

// SwapMaxNumPinnedPages bounds concurrently live pins during one logical
// operation (spec.md §5): the five records touched by relationship
// insertion, plus headroom.
const SwapMaxNumPinnedPages = 6

// DBConfig is the database-wide configuration.
type DBConfig struct {
	DBPath     string `mapstructure:"dbpath"`
	PageSize   int    `mapstructure:"pagesize"`
	CachePages int    `mapstructure:"cache_pages"`
	EvictLRUK  int    `mapstructure:"evict_lru_k"`
}

// New builds a DBConfig at dbpath with spec-default parameters.
func New(dbpath string) *DBConfig {
	return &DBConfig{
		DBPath:     dbpath,
		PageSize:   DefaultPageSize,
		CachePages: DefaultCachePages,
		EvictLRUK:  DefaultEvictLRUK,
	}
}

// NewWithParams builds a DBConfig with explicit page size and cache
// capacity.
func NewWithParams(dbpath string, pageSize, cachePages, evictLRUK int) *DBConfig {
	return &DBConfig{DBPath: dbpath, PageSize: pageSize, CachePages: cachePages, EvictLRUK: evictLRUK}
}

// Load reads configuration from path via viper. path's extension selects
// the format (yaml, json, toml, ...); a .txt or extensionless file is
// treated as a flat key=value list, matching the teacher's original
// config.txt convention. Missing keys fall back to spec defaults.
func Load(path string) (*DBConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := filepath.Ext(path); ext == "" || ext == ".txt" {
		v.SetConfigType("dotenv")
	}
	v.SetDefault("pagesize", DefaultPageSize)
	v.SetDefault("cache_pages", DefaultCachePages)
	v.SetDefault("evict_lru_k", DefaultEvictLRUK)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var c DBConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.DBPath == "" {
		c.DBPath = v.GetString("dbpath")
	}
	return &c, nil
}

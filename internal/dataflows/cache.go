package dataflows

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCache is a TTL-bounded JSON file cache for fetched market data.
// A nil or disabled cache is a no-op, so callers never branch on it.
type FileCache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

func NewFileCache(dir string, ttl time.Duration, enabled bool) *FileCache {
	return &FileCache{
		dir:     dir,
		ttl:     ttl,
		enabled: enabled,
	}
}

// cacheKey derives a file name from the method and its parameters.
func (fc *FileCache) cacheKey(method string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s_%x.json", method, hash)
}

// Get loads a cached value into result. Returns false on miss, expiry,
// or when caching is off.
func (fc *FileCache) Get(method string, params interface{}, result interface{}) bool {
	if fc == nil || !fc.enabled {
		return false
	}

	path := filepath.Join(fc.dir, fc.cacheKey(method, params))

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > fc.ttl {
		os.Remove(path)
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set stores a value under the method and parameters.
func (fc *FileCache) Set(method string, params interface{}, value interface{}) error {
	if fc == nil || !fc.enabled {
		return nil
	}

	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(fc.dir, fc.cacheKey(method, params)), data, 0644)
}

package common

import (
	"encoding/json"
	"time"
)

// CacheInterface defines the contract for cache implementations
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value from cache by key
	// Returns the value and true if found, nil and false otherwise
	Get(key string) (interface{}, bool)

	// Delete removes a value from cache by key
	Delete(key string)

	// DeletePrefix removes every key starting with prefix and returns how many went
	DeletePrefix(prefix string) int

	// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// SetJSON stores v as encoded JSON so both cache backends hand back the same bytes
func SetJSON(c CacheInterface, key string, v any, duration time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Set(key, json.RawMessage(data), duration)
	return nil
}

// GetJSON decodes the cached value for key into dst
func GetJSON(c CacheInterface, key string, dst any) bool {
	val, found := c.Get(key)
	if !found {
		return false
	}
	return DecodeJSON(val, dst) == nil
}

// DecodeJSON decodes a value handed back by either cache backend into dst
func DecodeJSON(val any, dst any) error {
	var data []byte
	switch v := val.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		data = b
	}
	return json.Unmarshal(data, dst)
}

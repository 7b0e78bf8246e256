package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// GateSessionKey returns the cache key holding a session's gate state
func (r *CacheKeyStruct) GateSessionKey(sessionID string) string {
	return fmt.Sprintf("gate:session:%s", sessionID)
}

var CacheKey = NewCacheKeyStruct()

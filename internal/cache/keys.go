package cache

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

const (
	TagsTTL     = 24 * time.Hour
	LocationTTL = 1 * time.Hour
)

// TagsKey generates Redis key for the tag set of a document, by content hash
func TagsKey(documentSHA1 string, model string) string {
	return fmt.Sprintf("cache:v1:tags:%s:%s", model, documentSHA1)
}

// LocationKey generates Redis key for location suggestions
func LocationKey(query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	hash := sha1.Sum([]byte(normalized))
	return fmt.Sprintf("cache:v1:locations:%x", hash)
}

// LockKey generates the stampede lock key guarding key
func LockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

package redis

import "fmt"

const (
	// KeyPrefix namespaces every archivist key.
	KeyPrefix = "archivist:"
	// KeyPrefixTitle is the prefix for cached page titles
	KeyPrefixTitle = KeyPrefix + "title:"
)

// RecordKey returns the key holding one record document.
func RecordKey(collection, id string) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefix, collection, id)
}

// AllKey returns the sorted-set index of every record in a collection.
func AllKey(collection string) string {
	return fmt.Sprintf("%s%s:all", KeyPrefix, collection)
}

// UserKey returns the sorted-set index of a user's records.
func UserKey(collection, userID string) string {
	return fmt.Sprintf("%s%s:user:%s", KeyPrefix, collection, userID)
}

// ScopeKey returns the sorted-set index of a (user, category) scope.
func ScopeKey(collection, userID, categoryID string) string {
	return fmt.Sprintf("%s%s:scope:%s:%s", KeyPrefix, collection, userID, categoryID)
}

// TitleKey returns the cache key for a URL digest.
func TitleKey(digest string) string {
	return KeyPrefixTitle + digest
}

// indexKey picks the narrowest index able to answer a query.
func indexKey(collection, userID, categoryID string) string {
	switch {
	case userID != "" && categoryID != "":
		return ScopeKey(collection, userID, categoryID)
	case userID != "":
		return UserKey(collection, userID)
	default:
		return AllKey(collection)
	}
}

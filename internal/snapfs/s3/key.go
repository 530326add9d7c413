package s3

import "strings"

// DirPrefix converts a directory path into the S3 key prefix that lists it.
// An empty or "/" path means the bucket root (empty prefix).
func DirPrefix(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return ""
	}
	return dir + "/"
}

// BaseOfKey returns the last path segment of an object key.
func BaseOfKey(key string) string {
	key = strings.TrimSuffix(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// BaseOfPrefix returns the name of the directory a common prefix denotes.
// ListObjectsV2 common prefixes always carry a trailing slash.
func BaseOfPrefix(prefix string) string {
	return BaseOfKey(strings.TrimSuffix(prefix, "/"))
}

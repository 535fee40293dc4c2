package usecase

import (
	"net/url"
	"strings"
)

// NormalizeObjectKey reduces a stored media path to a bucket-relative object key.
// Accepted forms: a public object URL (".../object/public/<bucket>/<key>"), any other
// absolute http(s) URL to the object, a "<bucket>/"-prefixed path, or a bare key.
func NormalizeObjectKey(stored, bucket string) string {
	key := strings.TrimSpace(stored)

	marker := "/object/public/" + bucket + "/"
	if i := strings.Index(key, marker); i >= 0 {
		key = key[i+len(marker):]
		if q := strings.IndexAny(key, "?#"); q >= 0 {
			key = key[:q]
		}
		if unescaped, err := url.PathUnescape(key); err == nil {
			key = unescaped
		}
		return key
	}

	if u, err := url.Parse(key); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		key = strings.TrimPrefix(u.Path, "/")
	}

	return strings.TrimPrefix(key, bucket+"/")
}

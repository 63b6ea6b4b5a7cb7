// Package location maps bucket-relative object paths to public URLs and back.
package location

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a URL carries no path inside the bucket.
var ErrInvalidURL = errors.New("url does not reference an object in the bucket")

// Public returns the public URL of path inside bucket, rooted at base.
func Public(base, bucket, path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.Join(segments, "/")
}

// Path recovers the bucket-relative object path from a URL built by Public
// with the same base and bucket. URLs from another base are matched on the
// first "/<bucket>/" segment.
func Path(publicURL, base, bucket string) (string, error) {
	if publicURL == "" || bucket == "" {
		return "", ErrInvalidURL
	}

	if prefix := strings.TrimRight(base, "/") + "/" + bucket + "/"; base != "" && strings.HasPrefix(publicURL, prefix) {
		return objectPath(publicURL[len(prefix):])
	}

	marker := "/" + bucket + "/"
	idx := strings.Index(publicURL, marker)
	if idx < 0 {
		return "", ErrInvalidURL
	}
	return objectPath(publicURL[idx+len(marker):])
}

func objectPath(rest string) (string, error) {
	if q := strings.IndexAny(rest, "?#"); q >= 0 {
		rest = rest[:q]
	}
	path, err := url.PathUnescape(rest)
	if err != nil || path == "" {
		return "", ErrInvalidURL
	}
	return path, nil
}

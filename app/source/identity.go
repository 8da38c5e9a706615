package source

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tracking query parameters stripped during link canonicalization. They vary
// between fetches of the same logical item and must never influence identity.
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
	"ref":    true,
}

func isTrackingParam(key string) bool {
	return trackingParams[strings.ToLower(key)] || strings.HasPrefix(strings.ToLower(key), "utm")
}

// CanonicalLink normalizes a URL so that two fetches of the same logical item
// compare equal: lowercased scheme/host, no fragment, no tracking parameters,
// no trailing slash. Unparseable input is returned trimmed as-is.
func CanonicalLink(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if isTrackingParam(key) {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

// ResolveGUID derives a stable natural key for a candidate that lacks a
// source-supplied identifier. The hash covers canonical link and normalized
// title only: nothing ephemeral (timestamps, ordering, tracking params) may
// leak into it.
func ResolveGUID(link, title string) string {
	normTitle := strings.Join(strings.Fields(norm.NFKC.String(title)), " ")
	content := CanonicalLink(link) + "|" + normTitle

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

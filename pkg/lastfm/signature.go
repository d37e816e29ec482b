package lastfm

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Params holds request parameters for a Last.fm method call.
type Params map[string]string

// Set sets key to value unconditionally.
func (p Params) Set(key, value string) Params {
	p[key] = value
	return p
}

// SetOpt sets key only when value is non-empty.
func (p Params) SetOpt(key, value string) Params {
	if value != "" {
		p[key] = value
	}
	return p
}

// SetInt sets key only when n is positive.
func (p Params) SetInt(key string, n int) Params {
	if n > 0 {
		p[key] = strconv.Itoa(n)
	}
	return p
}

// SetTime sets key to the unix timestamp of t, skipping the zero time.
func (p Params) SetTime(key string, t time.Time) Params {
	if !t.IsZero() {
		p[key] = strconv.FormatInt(t.Unix(), 10)
	}
	return p
}

// clone returns a shallow copy so callers can reuse a base set per page.
func (p Params) clone() Params {
	out := make(Params, len(p)+4)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// calculateSignature generates an MD5 signature for Last.fm API requests.
//
// The signature is calculated by:
// 1. Sorting parameter keys alphabetically
// 2. Concatenating key+value pairs (e.g., "keyAvalueAkeyBvalueB")
// 3. Appending the API secret
// 4. Taking the MD5 hash of the result
//
// The format and callback parameters are never part of the signature.
func calculateSignature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "format" || k == "callback" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params[k])
	}
	sb.WriteString(secret)

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

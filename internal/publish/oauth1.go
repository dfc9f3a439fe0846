package publish

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// oauthSigner produces OAuth 1.0a HMAC-SHA1 Authorization headers for
// user-context requests to the X API. nonce and now are injectable so
// signatures are reproducible in tests.
type oauthSigner struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string
	nonce          func() string
	now            func() time.Time
}

func newOAuthSigner(consumerKey, consumerSecret, token, tokenSecret string) *oauthSigner {
	return &oauthSigner{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		token:          token,
		tokenSecret:    tokenSecret,
		nonce:          randomNonce,
		now:            time.Now,
	}
}

func randomNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// authorizationHeader signs a request and returns the OAuth header
// value. extraParams holds any query or form parameters that are part
// of the signature base string.
func (s *oauthSigner) authorizationHeader(method, rawURL string, extraParams url.Values) string {
	oauthParams := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprint(s.now().Unix()),
		"oauth_token":            s.token,
		"oauth_version":          "1.0",
	}

	signature := s.sign(method, rawURL, oauthParams, extraParams)
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", percentEncode(k), percentEncode(oauthParams[k])))
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// sign builds the RFC 5849 signature base string and computes the
// HMAC-SHA1 signature over it.
func (s *oauthSigner) sign(method, rawURL string, oauthParams map[string]string, extraParams url.Values) string {
	pairs := make([][2]string, 0, len(oauthParams)+len(extraParams))
	for k, v := range oauthParams {
		pairs = append(pairs, [2]string{percentEncode(k), percentEncode(v)})
	}
	for k, values := range extraParams {
		for _, v := range values {
			pairs = append(pairs, [2]string{percentEncode(k), percentEncode(v)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	encoded := make([]string, len(pairs))
	for i, p := range pairs {
		encoded[i] = p[0] + "=" + p[1]
	}
	paramString := strings.Join(encoded, "&")

	base := strings.ToUpper(method) + "&" + percentEncode(rawURL) + "&" + percentEncode(paramString)
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode implements RFC 3986 encoding as required by OAuth:
// only unreserved characters stay literal.
func percentEncode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

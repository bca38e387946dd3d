package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths are served without an API key (health checks, Prometheus scrapes).
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const bearerPrefix = "Bearer "

// APIKeyAuth guards the /v1 API with the configured keys, sent as
// "Authorization: Bearer <key>". Keys are kept as SHA-256 digests and compared
// in constant time. With no non-empty key configured the API is open.
func APIKeyAuth(apiKeys []string) func(http.Handler) http.Handler {
	var digests [][sha256.Size]byte
	for _, k := range apiKeys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(digests) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, bearerPrefix) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="lexcore"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeMissingAPIKey,
					"an API key is required as a Bearer token")
				return
			}

			if !knownKey(digests, auth[len(bearerPrefix):]) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="lexcore", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeInvalidAPIKey, "API key not recognized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func knownKey(digests [][sha256.Size]byte, key string) bool {
	sum := sha256.Sum256([]byte(key))
	found := 0
	for i := range digests {
		found |= subtle.ConstantTimeCompare(digests[i][:], sum[:])
	}
	return found == 1
}

package ambient

import "net/http"

const (
	HeaderPlatformType    = "Platform-Type"
	HeaderPlatformVersion = "Platform-Version"
	HeaderAppVersion      = "App-Version"
)

// Middleware opens a request scope for every request, filling Headers from
// the platform and app version request headers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Record{
			Headers: Headers{
				PlatformType:    r.Header.Get(HeaderPlatformType),
				PlatformVersion: r.Header.Get(HeaderPlatformVersion),
				AppVersion:      r.Header.Get(HeaderAppVersion),
			},
		}
		ctx := NewContext(r.Context(), rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

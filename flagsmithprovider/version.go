package flagsmithprovider

import (
	"fmt"
	"runtime/debug"
)

const modulePath = "github.com/Flagsmith/flagsmith-go-feature"

// getUserAgent returns the User-Agent header value in the format "flagsmith-go-feature/<version>".
// If the version cannot be determined (e.g., during development), it returns "flagsmith-go-feature/unknown".
func getUserAgent() string {
	const name = "flagsmith-go-feature"
	const unknownVersion = "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Sprintf("%s/%s", name, unknownVersion)
	}

	version := info.Main.Version
	if info.Main.Path != modulePath {
		version = ""
		for _, dep := range info.Deps {
			if dep.Path == modulePath {
				version = dep.Version
				break
			}
		}
	}

	if version == "" || version == "(devel)" {
		return fmt.Sprintf("%s/%s", name, unknownVersion)
	}

	return fmt.Sprintf("%s/%s", name, version)
}

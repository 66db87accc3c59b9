package feature

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/blang/semver/v4"
)

// coerceRe finds the first major(.minor)(.patch) run in a version string.
var coerceRe = regexp.MustCompile(`(?:^|[^\d])(\d{1,16})(?:\.(\d{1,16}))?(?:\.(\d{1,16}))?(?:$|[^\d])`)

// coerceVersion turns a loose version string into major.minor.patch,
// filling missing components with zero. "10" becomes "10.0.0" and
// "v12.2.1-beta" becomes "12.2.1". It reports false when the string holds
// no version number at all.
func coerceVersion(raw string) (string, bool) {
	m := coerceRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	var parts [3]uint64
	for i, s := range m[1:] {
		if s == "" {
			continue
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return "", false
		}
		parts[i] = n
	}
	v := semver.Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}
	if err := v.Validate(); err != nil {
		return "", false
	}
	return v.String(), true
}

// parseAppVersion accepts major.minor.patch as is and rewrites
// major.minor.patch.build to major.minor.patch-build.
func (e *Evaluator) parseAppVersion(appVersion string) (string, bool) {
	if appVersion == "" {
		return "", false
	}

	parts := strings.Split(appVersion, ".")
	switch len(parts) {
	case 3:
		return appVersion, true
	case 4:
		return strings.Join(parts[:3], ".") + "-" + parts[3], true
	}

	e.log.Warn("invalid app version format for feature flag", "appVersion", appVersion)
	return "", false
}

// userIDBase64 re-encodes a hex user identifier as base64, which keeps
// long hashes within provider value length limits.
func userIDBase64(userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	raw, err := hex.DecodeString(userID)
	if err != nil {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(raw), true
}

// enrich fills absent fields of ec from the ambient record and derives the
// normalized ones. Explicit values always win over ambient ones.
func (e *Evaluator) enrich(ctx context.Context, ec EvaluationContext, now time.Time) EvaluationContext {
	ec = ec.clone()
	rec, _ := e.store.Get(ctx)

	if ec.UserID == "" {
		ec.UserID = rec.LogData.UserIdentifier
	}
	if ec.UserIDBase64 == "" {
		if encoded, ok := userIDBase64(ec.UserID); ok {
			ec.UserIDBase64 = encoded
		} else if ec.UserID != "" {
			e.log.Debug("user id is not hex encoded, skipping base64 form", "userId", ec.UserID)
		}
	}
	if ec.SessionType == "" {
		ec.SessionType = rec.LogData.SessionType
	}
	if ec.PlatformType == "" {
		ec.PlatformType = PlatformType(rec.Headers.PlatformType)
	}

	if ec.PlatformVersion == "" {
		ec.PlatformVersion = rec.Headers.PlatformVersion
	}
	ec.PlatformVersion, _ = coerceVersion(ec.PlatformVersion)

	if ec.AppVersion == "" {
		ec.AppVersion = rec.Headers.AppVersion
	}
	ec.AppVersion, _ = e.parseAppVersion(ec.AppVersion)

	if ec.CurrentTime.IsZero() {
		ec.CurrentTime = now
	}
	return ec
}

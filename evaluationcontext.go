package feature

import (
	"log/slog"
	"time"
)

// PlatformType identifies the client platform a request originates from.
type PlatformType string

const (
	PlatformAndroid PlatformType = "Android"
	PlatformIOS     PlatformType = "iOS"
	PlatformHuawei  PlatformType = "Huawei"
	PlatformBrowser PlatformType = "Browser"
)

// EvaluationContext is contextual data used during feature flag evaluation.
//
// Empty strings and the zero time mean the field is absent. The zero value
// is a valid, empty context.
type EvaluationContext struct {
	// UserID is an opaque user identifier, usually a hex encoded hash.
	UserID string
	// UserIDBase64 is the base64 form of the hex decoded UserID.
	// It is derived during evaluation when left empty.
	UserIDBase64 string
	SessionType  string
	PlatformType PlatformType
	// PlatformVersion is a semantic version major(.minor)(.patch).
	PlatformVersion string
	// AppVersion is a semantic version major.minor.patch(.build).
	AppVersion  string
	CurrentTime time.Time
	// Properties carries provider specific attributes verbatim.
	Properties map[string]string
}

// LogValue implements [slog.LogValuer], omitting absent fields.
func (ec EvaluationContext) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 8)
	if ec.UserID != "" {
		attrs = append(attrs, slog.String("userId", ec.UserID))
	}
	if ec.UserIDBase64 != "" {
		attrs = append(attrs, slog.String("userIdBase64", ec.UserIDBase64))
	}
	if ec.SessionType != "" {
		attrs = append(attrs, slog.String("sessionType", ec.SessionType))
	}
	if ec.PlatformType != "" {
		attrs = append(attrs, slog.String("platformType", string(ec.PlatformType)))
	}
	if ec.PlatformVersion != "" {
		attrs = append(attrs, slog.String("platformVersion", ec.PlatformVersion))
	}
	if ec.AppVersion != "" {
		attrs = append(attrs, slog.String("appVersion", ec.AppVersion))
	}
	if !ec.CurrentTime.IsZero() {
		attrs = append(attrs, slog.Time("currentTime", ec.CurrentTime))
	}
	for _, k := range sortedKeys(ec.Properties) {
		attrs = append(attrs, slog.String(k, ec.Properties[k]))
	}
	return slog.GroupValue(attrs...)
}

// Traits flattens the context into string attributes keyed the way flag
// providers expect them. Absent fields are left out.
func (ec EvaluationContext) Traits() map[string]string {
	traits := make(map[string]string, len(ec.Properties)+7)
	for k, v := range ec.Properties {
		traits[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			traits[k] = v
		}
	}
	set("userId", ec.UserID)
	set("userIdBase64", ec.UserIDBase64)
	set("sessionType", ec.SessionType)
	set("platformType", string(ec.PlatformType))
	set("platformVersion", ec.PlatformVersion)
	set("appVersion", ec.AppVersion)
	if !ec.CurrentTime.IsZero() {
		traits["currentTime"] = ec.CurrentTime.UTC().Format(time.RFC3339)
	}
	return traits
}

func (ec EvaluationContext) clone() EvaluationContext {
	if ec.Properties != nil {
		props := make(map[string]string, len(ec.Properties))
		for k, v := range ec.Properties {
			props[k] = v
		}
		ec.Properties = props
	}
	return ec
}

package flagsmithprovider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// probe checks that the flags endpoint answers with the given key. Remote
// evaluation makes no request until the first flag check, so this is what
// surfaces an unreachable or misconfigured API at startup.
func (p *Provider) probe(ctx context.Context, baseURL, apiKey string, headers map[string]string, log *slog.Logger) error {
	log = log.With(slog.String("worker", "probe"))

	client := resty.New().
		SetTimeout(p.requestTimeout).
		SetLogger(restyLogger{log: log}).
		SetHeaders(headers).
		SetHeaders(map[string]string{
			"Accept":            "application/json",
			"X-Environment-Key": apiKey,
			"User-Agent":        getUserAgent(),
		}).
		OnBeforeRequest(startProbeTrace(log, p.requestTimeout)).
		OnAfterResponse(finishProbeTrace(log))

	resp, err := client.R().SetContext(ctx).Get(baseURL + "flags/")
	if err != nil {
		return fmt.Errorf("probe %s: %w", baseURL, err)
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	return nil
}

// restyLogger routes resty's own diagnostics to slog.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log.Error(fmt.Sprintf(format, v...)) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log.Debug(fmt.Sprintf(format, v...)) }

// probeTrace follows one probe request from send to response.
type probeTrace struct {
	log     *slog.Logger
	started time.Time
}

type probeTraceCtxKey struct{}

func startProbeTrace(log *slog.Logger, timeout time.Duration) resty.RequestMiddleware {
	return func(_ *resty.Client, req *resty.Request) error {
		trace := &probeTrace{
			log: log.With(
				slog.String("method", req.Method),
				slog.String("url", req.URL),
				slog.Duration("timeout", timeout),
			),
			started: time.Now(),
		}
		trace.log.Debug("probing flags endpoint")
		req.SetContext(context.WithValue(req.Context(), probeTraceCtxKey{}, trace))
		return nil
	}
}

func finishProbeTrace(log *slog.Logger) resty.ResponseMiddleware {
	return func(_ *resty.Client, resp *resty.Response) error {
		trace, ok := resp.Request.Context().Value(probeTraceCtxKey{}).(*probeTrace)
		if !ok {
			trace = &probeTrace{log: log, started: resp.Request.Time}
		}
		attrs := []any{
			slog.Int("status", resp.StatusCode()),
			slog.Duration("duration", time.Since(trace.started)),
			slog.Int64("content_length", resp.Size()),
		}
		if resp.IsError() {
			trace.log.Error("flags endpoint rejected probe", attrs...)
		} else {
			trace.log.Debug("flags endpoint answered probe", attrs...)
		}
		return nil
	}
}

package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with the autofill session and response carried by
// the context.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		r.AddAttrs(slog.Group("sess",
			slog.String("client_id", sd.ClientID),
			slog.String("id", sd.SessionID),
		))
	}

	if rd, ok := ctx.Value(responseDataKey{}).(*ResponseData); ok {
		r.AddAttrs(slog.Group("resp",
			slog.String("id", rd.ResponseID),
		))
	}

	if fd, ok := ctx.Value(fileDataKey{}).(*FileData); ok {
		r.AddAttrs(slog.Group("file",
			slog.String("path", fd.Path),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{h.Handler.WithGroup(name)}
}

type sessionDataKey struct{}

type SessionData struct {
	ClientID  string
	SessionID string
}

func WithSessionData(ctx context.Context, data *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, data)
}

type responseDataKey struct{}

type ResponseData struct {
	ResponseID string
}

func WithResponseData(ctx context.Context, data *ResponseData) context.Context {
	return context.WithValue(ctx, responseDataKey{}, data)
}

type fileDataKey struct{}

type FileData struct {
	Path string
}

func WithFileData(ctx context.Context, data *FileData) context.Context {
	return context.WithValue(ctx, fileDataKey{}, data)
}

package appcontext

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextId int

const (
	cycleIdKeyId contextId = iota
	streamKeyId
	requestIdKeyId
)

func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdKeyId, requestId)
}

func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKeyId).(string)
	return id
}

func WithCycleId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleIdKeyId, id)
}

func WithStream(ctx context.Context, liveFile string) context.Context {
	return context.WithValue(ctx, streamKeyId, liveFile)
}

func LoggerFromContext(logger logrus.FieldLogger, ctx context.Context) logrus.FieldLogger {
	if ctx == nil {
		return logger
	}

	result := logger

	if ctxCycleId, ok := ctx.Value(cycleIdKeyId).(string); ok && ctxCycleId != "" {
		result = result.WithField("cycle_id", ctxCycleId)
	}

	if ctxStream, ok := ctx.Value(streamKeyId).(string); ok && ctxStream != "" {
		result = result.WithField("stream", ctxStream)
	}

	if ctxRequestId, ok := ctx.Value(requestIdKeyId).(string); ok && ctxRequestId != "" {
		result = result.WithField("request_id", ctxRequestId)
	}

	return result
}

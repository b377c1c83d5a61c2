package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/metadata"
)

// MetadataCarrier adapts gRPC metadata.MD to an OpenTelemetry TextMapCarrier.
type MetadataCarrier metadata.MD

func (c MetadataCarrier) Get(key string) string {
	v := metadata.MD(c).Get(key)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (c MetadataCarrier) Set(key string, value string) {
	metadata.MD(c).Set(key, value)
}

func (c MetadataCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}

// ExtractIncoming continues the caller's trace from incoming gRPC metadata.
func ExtractIncoming(ctx context.Context) (context.Context, metadata.MD) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, nil
	}
	return otel.GetTextMapPropagator().Extract(ctx, MetadataCarrier(md)), md
}

package rabbitmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// injectTraceHeaders writes the W3C trace context of ctx into headers.
func injectTraceHeaders(ctx context.Context, headers amqp.Table) amqp.Table {
	if headers == nil {
		headers = amqp.Table{}
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	for k, v := range carrier {
		headers[k] = v
	}
	return headers
}

// extractTraceHeaders returns ctx enriched with the trace context found in
// headers. Non-string values are ignored.
func extractTraceHeaders(ctx context.Context, headers amqp.Table) context.Context {
	carrier := propagation.MapCarrier{}

	for k, v := range headers {
		switch s := v.(type) {
		case string:
			carrier[k] = s
		case []byte:
			carrier[k] = string(s)
		}
	}

	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

func headerString(headers amqp.Table, key string) string {
	switch v := headers[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

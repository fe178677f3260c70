package middleware

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request, continuing any propagated trace.
// The span context is handed to handlers through c.UserContext().
func Tracing(serviceName string) fiber.Handler {
	tracer := otel.Tracer(serviceName)
	return func(c *fiber.Ctx) error {
		carrier := propagation.HeaderCarrier(http.Header(c.GetReqHeaders()))
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethodKey.String(c.Method()),
				semconv.HTTPTargetKey.String(c.OriginalURL()),
				semconv.HTTPSchemeKey.String(c.Protocol()),
				semconv.NetHostNameKey.String(c.Hostname()),
			),
		)
		defer span.End()

		c.SetUserContext(ctx)
		err := c.Next()

		status := c.Response().StatusCode()
		span.SetName(c.Method() + " " + c.Route().Path)
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(status))
		if err != nil {
			span.RecordError(err)
		}
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}
		return err
	}
}

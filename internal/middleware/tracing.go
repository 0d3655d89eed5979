package middleware

import (
	"fmt"
	"io"
	"net/http"

	"github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/middleware/http"
	httpreporter "github.com/openzipkin/zipkin-go/reporter/http"
)

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

func passthrough(next http.Handler) http.Handler { return next }

// NewTracing returns a zipkin server middleware reporting to address.
// With an empty address tracing is off and the middleware passes requests through.
func NewTracing(serviceName, address string, port int) (Middleware, io.Closer, error) {
	if address == "" {
		return passthrough, noopCloser{}, nil
	}

	reporter := httpreporter.NewReporter("http://" + address + "/api/v2/spans")

	endpoint, err := zipkin.NewEndpoint(serviceName, fmt.Sprintf("localhost:%d", port))
	if err != nil {
		reporter.Close()
		return nil, nil, fmt.Errorf("не удалось создать endpoint zipkin: %w", err)
	}

	tracer, err := zipkin.NewTracer(reporter, zipkin.WithLocalEndpoint(endpoint))
	if err != nil {
		reporter.Close()
		return nil, nil, fmt.Errorf("не удалось создать tracer zipkin: %w", err)
	}

	return zipkinhttp.NewServerMiddleware(tracer, zipkinhttp.TagResponseSize(true)), reporter, nil
}

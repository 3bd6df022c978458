// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware reuses a well-formed X-Request-ID header or generates a UUID, stores it in the
// request context and echoes it in the response. LoggerExtractor adds it to every log record
// written with that context:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware())
package requestid

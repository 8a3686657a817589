// Package handler contains helpers to assemble HTTP handler implementations
// using a composable, clear, and simple API. Handlers return a buffered
// Response or an error instead of writing to the client, and a Pipeline runs
// them through middlewares (e.g. authorization) and a Finalizer.
//
// The Finalizer is the single place where internal errors are turned into
// client responses. It replaces the body of failed responses with a sanitized
// error envelope that carries a correlation ID, and writes a RequestLog with
// the full error detail to a Sink.
package handler

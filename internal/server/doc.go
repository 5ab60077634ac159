// Package server provides the HTTP server for the callback verification
// service.
//
// The server is configured through environment variables
// (see internal/config/config.go for details).
//
// Handlers live in internal/server/handlers and middleware in
// internal/server/middleware.
package server

// Package handlers provides the HTTP handlers for the callback service:
// the callback verification endpoint plus general infrastructure
// handlers (health, version).
package handlers

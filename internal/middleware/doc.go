// Package middleware provides HTTP middleware for the catalog API.
//
// It includes:
//   - Structured access logging through the logging package
//   - Prometheus request metrics labeled by route template
//
// Health checks can be left out of the access log.
package middleware

// Package middleware provides the gin middleware applied to every sheets-gateway request:
// request IDs, panic recovery, access logging, security headers, CORS, JSON body parsing and
// rate limiting.
package middleware

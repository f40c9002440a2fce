// Package httputil provides the JSON and binary response helpers used by the
// dashboard handlers, so every endpoint shares one error envelope.
package httputil

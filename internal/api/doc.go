// Package api exposes the learning service over a local JSON HTTP API.
// It decodes and validates requests, maps service errors to status codes
// and safe messages, and routes requests with chi.
package api

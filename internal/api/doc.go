// Package api exposes the HTTP surface: material submission and inspection,
// job inspection, manual step execution, and operator queue controls. It
// validates requests, maps store and queue errors to status codes, and keeps
// raw error details out of response bodies.
package api

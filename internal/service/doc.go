// Package service contains the application-level use cases. It orchestrates
// domain objects, the stores defined in internal/store and the event emitter
// to fulfill the operations exposed by the API layer.
//
// Services receive their dependencies through constructor injection and
// apply transactional boundaries when an operation spans multiple records.
// Expected failures surface as sentinel errors; unexpected ones are wrapped
// with operation context so the API layer can map them to status codes
// without losing the cause.
package service

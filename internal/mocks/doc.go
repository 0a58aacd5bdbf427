// Package mocks provides in-memory fakes and mock implementations of the
// application's interfaces for testing.
//
// The store fakes reproduce the persistence semantics the queue depends on
// (conditional updates, duplicate detection, snapshot scans) so queue and
// pipeline behavior can be tested without a database. Mocks for external
// boundaries (caption tool, LLM) use override functions per method.
package mocks

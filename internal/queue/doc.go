// Package queue implements the durable, at-least-once job queue and the
// pipeline step-sequencing machinery: soft time-boxed locking, stale-lock
// reclamation, duplicate-job suppression, idempotent step progression and
// exponential backoff retries. All cross-worker coordination happens through
// the shared transactional store; every writer re-validates state inside its
// transaction before mutating anything.
package queue

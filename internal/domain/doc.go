// Package domain holds the core entities of the system: materials, jobs,
// pipeline state with its candidates and cues, and persisted expressions.
// Entities validate themselves and carry no storage or transport concerns.
package domain

// Package config loads and validates application settings from environment
// variables (prefix LEXIVID_) with sensible defaults for the server, queue,
// pipeline, captions tool, and LLM provider. Components receive typed config
// sections rather than reading the environment themselves.
package config

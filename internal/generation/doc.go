// Package generation defines the boundary to external AI/LLM services. It
// abstracts the details of LLM API integration (Gemini), letting the
// pipeline refine candidate decisions and generate explanations without
// coupling to a specific provider.
package generation

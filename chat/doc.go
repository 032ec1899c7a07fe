// Package chat provides the provider-independent glue around the ChatSession
// contract: task instruction builders shared by all providers, decoding and
// validation of dashboard responses, and deterministic in-memory doubles
// (MockSession, MockFactory) for tests and examples.
//
// Concrete providers live in the chat/openai and chat/anthropic subpackages.
package chat

// Package core provides the foundational domain types for datachat. It
// defines:
//
//   - SessionState (snapshot of one analysis conversation)
//   - TranscriptEntry / ChartSpec (the conversation history and its payloads)
//   - Action + Reduce (a closed action set dispatched through a single pure
//     transition function)
//   - Collaborator contracts (ChatSession, ChatFactory, FileParser) consumed
//     by the orchestrator but implemented elsewhere
//
// The package intentionally keeps implementation concerns (providers, file
// parsing, orchestration) out of scope, exposing small interfaces to enable
// custom backends and deterministic test doubles.
package core

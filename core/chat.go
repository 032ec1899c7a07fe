package core

import "context"

// AnalysisResult is a complete one-shot response. Kind mirrors the
// transcript entry kinds; Charts is populated for dashboard results and Text
// for everything else.
type AnalysisResult struct {
	Kind   Kind        `json:"kind"`
	Text   string      `json:"text,omitempty"`
	Charts []ChartSpec `json:"charts,omitempty"`
}

// ChatSession is an opaque conversational context bound to one dataset. The
// session is exclusively owned by the current SessionState and replaced
// wholesale on new file ingestion.
type ChatSession interface {
	// Query issues a one-shot request and returns the complete result.
	Query(ctx context.Context, query string, task Task) (*AnalysisResult, error)

	// QueryStream issues a streaming request. The fragment channel is a
	// finite, non-restartable sequence delivered in arrival order; both
	// channels are closed when the stream ends. At most one error is sent.
	QueryStream(ctx context.Context, query string, task Task) (<-chan string, <-chan error)
}

// ChatFactory binds a new conversational context to a dataset's raw textual
// content.
type ChatFactory interface {
	New(ctx context.Context, rawContent string) (ChatSession, error)
}

// FileParser turns an uploaded file into ordered rows plus the original
// textual content.
type FileParser interface {
	Parse(ctx context.Context, file File) ([]Row, string, error)
}

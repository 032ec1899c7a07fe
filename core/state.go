package core

import "github.com/google/uuid"

// Role identifies the author of a transcript entry.
type Role string

const (
	// RoleUser marks an entry authored by the human analyst.
	RoleUser Role = "user"
	// RoleModel marks an entry authored by the generative backend.
	RoleModel Role = "model"
)

// Kind identifies the payload shape of a transcript entry.
type Kind string

const (
	// KindText is a plain (possibly still streaming) text response.
	KindText Kind = "text"
	// KindChart is a single chart payload.
	KindChart Kind = "chart"
	// KindDashboard is an ordered collection of charts.
	KindDashboard Kind = "dashboard"
	// KindError is a user-facing failure message shown in place of a response.
	KindError Kind = "error"
)

// Task selects the response shape requested from the backend and the merge
// strategy applied to its output.
type Task string

const (
	// TaskDashboard requests a one-shot set of chart specs.
	TaskDashboard Task = "dashboard"
	// TaskEDA requests a streamed exploratory data analysis.
	TaskEDA Task = "eda"
	// TaskInsights requests streamed key insights. Default when unspecified.
	TaskInsights Task = "insights"
)

// Row is a single parsed dataset record mapping column name to scalar value.
type Row map[string]any

// File references a user-supplied dataset prior to or after parsing.
type File struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Content []byte `json:"-"`
}

// TranscriptEntry is one element of the conversation history. Content is
// Text for text/error kinds and Charts for chart/dashboard kinds; exactly
// one of the two is meaningful for a given Kind.
type TranscriptEntry struct {
	ID      string      `json:"id"`
	Role    Role        `json:"role"`
	Kind    Kind        `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Charts  []ChartSpec `json:"charts,omitempty"`
	Loading bool        `json:"loading,omitempty"`
}

// NewUserEntry creates a completed user text entry.
func NewUserEntry(text string) TranscriptEntry {
	return TranscriptEntry{ID: NewID(), Role: RoleUser, Kind: KindText, Text: text}
}

// NewModelTextEntry creates an empty model text entry in the loading state,
// ready to receive streamed fragments.
func NewModelTextEntry() TranscriptEntry {
	return TranscriptEntry{ID: NewID(), Role: RoleModel, Kind: KindText, Loading: true}
}

// NewDashboardEntry creates an empty model dashboard entry in the loading
// state, finalized later by SetCharts.
func NewDashboardEntry() TranscriptEntry {
	return TranscriptEntry{ID: NewID(), Role: RoleModel, Kind: KindDashboard, Loading: true}
}

// NewErrorEntry creates a completed model error entry.
func NewErrorEntry(msg string) TranscriptEntry {
	return TranscriptEntry{ID: NewID(), Role: RoleModel, Kind: KindError, Text: msg}
}

// SessionState is a snapshot of one analysis conversation. It is treated as
// an immutable value: Reduce returns a new state and never mutates its input,
// so callers may retain prior snapshots safely.
//
// Invariants maintained by Reduce:
//   - at most one transcript entry is loading, and if present it is the last
//   - ParsedData, RawData and Chat are populated together, never partially
//   - Chat is absent until dataset ingestion succeeds
type SessionState struct {
	File       *File             `json:"file,omitempty"`
	ParsedData []Row             `json:"parsed_data,omitempty"`
	RawData    string            `json:"raw_data,omitempty"`
	Query      string            `json:"query,omitempty"`
	Loading    bool              `json:"loading"`
	Err        string            `json:"error,omitempty"`
	Chat       ChatSession       `json:"-"`
	Transcript []TranscriptEntry `json:"transcript,omitempty"`
}

// HasDataset reports whether ingestion has completed and queries may be
// submitted.
func (s SessionState) HasDataset() bool { return s.Chat != nil && len(s.ParsedData) > 0 }

// LastEntry returns the final transcript entry and whether one exists.
func (s SessionState) LastEntry() (TranscriptEntry, bool) {
	if len(s.Transcript) == 0 {
		return TranscriptEntry{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// NewID generates a unique identifier for transcript entries and turns.
func NewID() string { return uuid.NewString() }

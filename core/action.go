package core

// Action represents a single state transition request. Concrete action types
// implement the unexported isAction marker enabling a closed set, mirroring
// the Part union pattern.
type Action interface{ isAction() }

// StartLoading marks the session busy and clears any surfaced error.
type StartLoading struct{}

func (StartLoading) isAction() {}

// SetError surfaces a user-facing error and marks the session idle.
type SetError struct{ Msg string }

func (SetError) isAction() {}

// SetQuery replaces the pending query text.
type SetQuery struct{ Text string }

func (SetQuery) isAction() {}

// SetFile records a newly selected file and discards all dataset-derived
// state: parsed rows, raw text, chat handle, transcript and error.
type SetFile struct{ File *File }

func (SetFile) isAction() {}

// SetParsedData publishes the outcome of a successful ingestion. Rows, raw
// text and chat handle land in a single transition so observers never see a
// partially ingested dataset.
type SetParsedData struct {
	Rows []Row
	Raw  string
	Chat ChatSession
}

func (SetParsedData) isAction() {}

// AppendEntry appends one entry to the transcript.
type AppendEntry struct{ Entry TranscriptEntry }

func (AppendEntry) isAction() {}

// MergeFragment concatenates a streamed fragment onto the last entry's text
// and updates its loading flag. No-op when the transcript is empty or the
// last entry is not text.
type MergeFragment struct {
	Fragment string
	Loading  bool
}

func (MergeFragment) isAction() {}

// SetCharts finalizes the last model entry with its full chart content,
// clearing the entry's loading flag. No-op when the transcript is empty.
type SetCharts struct{ Charts []ChartSpec }

func (SetCharts) isAction() {}

// FinishTurn clears the session loading flag and, if present, the loading
// flag of the last transcript entry.
type FinishTurn struct{}

func (FinishTurn) isAction() {}

// FailLast converts the last entry into an error entry in place when it is a
// loading model entry, otherwise appends a fresh error entry. The session
// loading flag is cleared either way, so the transcript never ends in two
// consecutive loading entries.
type FailLast struct{ Msg string }

func (FailLast) isAction() {}

// Reset clears the conversation. With KeepFile the dataset (file, parsed
// rows, raw text, chat handle) survives; without it the state returns to the
// initial empty value.
type Reset struct{ KeepFile bool }

func (Reset) isAction() {}

// Reduce is the single pure transition function over the closed action set.
// It is total: unknown conditions degrade to a no-op rather than panic. The
// input state is never mutated; transcript slices are copied on write so
// previously returned states remain valid.
func Reduce(s SessionState, a Action) SessionState {
	switch act := a.(type) {
	case StartLoading:
		s.Loading = true
		s.Err = ""

	case SetError:
		s.Err = act.Msg
		s.Loading = false

	case SetQuery:
		s.Query = act.Text

	case SetFile:
		s.File = act.File
		s.ParsedData = nil
		s.RawData = ""
		s.Chat = nil
		s.Transcript = nil
		s.Err = ""

	case SetParsedData:
		s.ParsedData = act.Rows
		s.RawData = act.Raw
		s.Chat = act.Chat

	case AppendEntry:
		s.Transcript = appendEntry(s.Transcript, act.Entry)

	case MergeFragment:
		if last, ok := lastEntry(s.Transcript); ok && last.Kind == KindText {
			last.Text += act.Fragment
			last.Loading = act.Loading
			s.Transcript = replaceLast(s.Transcript, last)
		}

	case SetCharts:
		if last, ok := lastEntry(s.Transcript); ok {
			last.Charts = act.Charts
			last.Loading = false
			s.Transcript = replaceLast(s.Transcript, last)
		}

	case FinishTurn:
		s.Loading = false
		if last, ok := lastEntry(s.Transcript); ok && last.Loading {
			last.Loading = false
			s.Transcript = replaceLast(s.Transcript, last)
		}

	case FailLast:
		if last, ok := lastEntry(s.Transcript); ok && last.Role == RoleModel && last.Loading {
			last.Kind = KindError
			last.Text = act.Msg
			last.Charts = nil
			last.Loading = false
			s.Transcript = replaceLast(s.Transcript, last)
		} else {
			// Constructed inline so the transition stays deterministic; the
			// reducer never mints IDs.
			s.Transcript = appendEntry(s.Transcript, TranscriptEntry{Role: RoleModel, Kind: KindError, Text: act.Msg})
		}
		s.Loading = false

	case Reset:
		if act.KeepFile {
			s.Query = ""
			s.Err = ""
			s.Loading = false
			s.Transcript = nil
		} else {
			s = SessionState{}
		}
	}

	return s
}

func lastEntry(t []TranscriptEntry) (TranscriptEntry, bool) {
	if len(t) == 0 {
		return TranscriptEntry{}, false
	}
	return t[len(t)-1], true
}

func appendEntry(t []TranscriptEntry, e TranscriptEntry) []TranscriptEntry {
	out := make([]TranscriptEntry, len(t)+1)
	copy(out, t)
	out[len(t)] = e
	return out
}

func replaceLast(t []TranscriptEntry, e TranscriptEntry) []TranscriptEntry {
	out := make([]TranscriptEntry, len(t))
	copy(out, t)
	out[len(out)-1] = e
	return out
}

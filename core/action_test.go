package core

import (
	"context"
	"reflect"
	"testing"
)

func TestReduce_MergeFragmentsConcatenateInOrder(t *testing.T) {
	s := Reduce(SessionState{}, AppendEntry{Entry: NewModelTextEntry()})

	for _, f := range []string{"Hel", "lo", ", ", "world"} {
		s = Reduce(s, MergeFragment{Fragment: f, Loading: true})
	}
	s = Reduce(s, FinishTurn{})

	last, ok := s.LastEntry()
	if !ok {
		t.Fatal("expected a transcript entry")
	}
	if last.Text != "Hello, world" {
		t.Errorf("expected concatenation in arrival order, got %q", last.Text)
	}
	if last.Loading {
		t.Error("entry should not be loading after FinishTurn")
	}
	if s.Loading {
		t.Error("session should not be loading after FinishTurn")
	}
}

func TestReduce_MergeFragmentNoOpOnEmptyTranscript(t *testing.T) {
	s := Reduce(SessionState{}, MergeFragment{Fragment: "x", Loading: true})
	if len(s.Transcript) != 0 {
		t.Errorf("expected empty transcript, got %d entries", len(s.Transcript))
	}
}

func TestReduce_MergeFragmentSkipsNonTextEntries(t *testing.T) {
	s := Reduce(SessionState{}, AppendEntry{Entry: NewDashboardEntry()})
	merged := Reduce(s, MergeFragment{Fragment: "x", Loading: true})
	if !reflect.DeepEqual(s, merged) {
		t.Error("merging into a dashboard entry should be a no-op")
	}
}

func TestReduce_FailLastConvertsLoadingModelEntryInPlace(t *testing.T) {
	s := Reduce(SessionState{Loading: true}, AppendEntry{Entry: NewUserEntry("q")})
	s = Reduce(s, AppendEntry{Entry: NewModelTextEntry()})

	failed := Reduce(s, FailLast{Msg: "boom"})

	if len(failed.Transcript) != len(s.Transcript) {
		t.Fatalf("transcript length changed: %d -> %d", len(s.Transcript), len(failed.Transcript))
	}
	last, _ := failed.LastEntry()
	if last.Kind != KindError || last.Text != "boom" || last.Loading {
		t.Errorf("unexpected failed entry: %+v", last)
	}
	if failed.Loading {
		t.Error("session loading flag should be cleared")
	}
}

func TestReduce_FailLastAppendsWhenLastEntryNotLoading(t *testing.T) {
	s := Reduce(SessionState{}, AppendEntry{Entry: NewUserEntry("q")})

	failed := Reduce(s, FailLast{Msg: "boom"})

	if len(failed.Transcript) != len(s.Transcript)+1 {
		t.Fatalf("expected one appended entry, got %d -> %d", len(s.Transcript), len(failed.Transcript))
	}
	last, _ := failed.LastEntry()
	if last.Kind != KindError || last.Role != RoleModel || last.Text != "boom" {
		t.Errorf("unexpected appended entry: %+v", last)
	}
}

func TestReduce_FailLastOnEmptyTranscript(t *testing.T) {
	s := Reduce(SessionState{Loading: true}, FailLast{Msg: "boom"})
	if len(s.Transcript) != 1 {
		t.Fatalf("expected a single appended error entry, got %d", len(s.Transcript))
	}
	if s.Loading {
		t.Error("session loading flag should be cleared")
	}
}

func TestReduce_SetParsedDataIsAtomic(t *testing.T) {
	chat := stubSession{}
	rows := []Row{{"a": 1.0}}

	s := Reduce(SessionState{}, SetParsedData{Rows: rows, Raw: "a\n1\n", Chat: chat})

	if len(s.ParsedData) != 1 || s.RawData != "a\n1\n" || s.Chat == nil {
		t.Errorf("rows, raw and chat must be set together: %+v", s)
	}
}

func TestReduce_SetFileClearsDatasetState(t *testing.T) {
	s := SessionState{
		File:       &File{Name: "old.csv"},
		ParsedData: []Row{{"a": 1.0}},
		RawData:    "a\n1\n",
		Chat:       stubSession{},
		Err:        "stale",
		Transcript: []TranscriptEntry{NewUserEntry("q")},
	}

	next := Reduce(s, SetFile{File: &File{Name: "new.csv"}})

	if next.File == nil || next.File.Name != "new.csv" {
		t.Errorf("file not set: %+v", next.File)
	}
	if next.ParsedData != nil || next.RawData != "" || next.Chat != nil || next.Transcript != nil || next.Err != "" {
		t.Errorf("dataset-derived state should be cleared: %+v", next)
	}
}

func TestReduce_ResetKeepFilePreservesDataset(t *testing.T) {
	chat := stubSession{}
	s := SessionState{
		File:       &File{Name: "data.csv"},
		ParsedData: []Row{{"a": 1.0}},
		RawData:    "a\n1\n",
		Query:      "pending",
		Loading:    true,
		Err:        "stale",
		Chat:       chat,
		Transcript: []TranscriptEntry{NewUserEntry("q")},
	}

	next := Reduce(s, Reset{KeepFile: true})

	if next.File != s.File || next.RawData != s.RawData || next.Chat == nil {
		t.Errorf("dataset should survive keep-file reset: %+v", next)
	}
	if !reflect.DeepEqual(next.ParsedData, s.ParsedData) {
		t.Error("parsed rows should survive keep-file reset")
	}
	if next.Query != "" || next.Err != "" || next.Loading || next.Transcript != nil {
		t.Errorf("conversation state should be cleared: %+v", next)
	}
}

func TestReduce_ResetDropFileYieldsInitialState(t *testing.T) {
	s := SessionState{
		File:       &File{Name: "data.csv"},
		ParsedData: []Row{{"a": 1.0}},
		Chat:       stubSession{},
		Loading:    true,
		Transcript: []TranscriptEntry{NewUserEntry("q")},
	}

	next := Reduce(s, Reset{KeepFile: false})

	if !reflect.DeepEqual(next, SessionState{}) {
		t.Errorf("expected the initial empty state, got %+v", next)
	}
}

func TestReduce_IsPureAndDeterministic(t *testing.T) {
	base := Reduce(SessionState{}, AppendEntry{Entry: TranscriptEntry{ID: "e1", Role: RoleModel, Kind: KindText, Loading: true}})
	snapshot := Reduce(SessionState{}, AppendEntry{Entry: TranscriptEntry{ID: "e1", Role: RoleModel, Kind: KindText, Loading: true}})

	actions := []Action{
		StartLoading{},
		MergeFragment{Fragment: "abc", Loading: true},
		SetCharts{Charts: []ChartSpec{{Type: ChartBar}}},
		FailLast{Msg: "x"},
		FinishTurn{},
		Reset{KeepFile: true},
	}
	for _, a := range actions {
		first := Reduce(base, a)
		second := Reduce(base, a)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%T is not deterministic", a)
		}
		if !reflect.DeepEqual(base, snapshot) {
			t.Fatalf("%T mutated its input state", a)
		}
	}
}

func TestReduce_AtMostOneLoadingEntryAndItIsLast(t *testing.T) {
	s := SessionState{}
	steps := []Action{
		StartLoading{},
		AppendEntry{Entry: NewUserEntry("q")},
		AppendEntry{Entry: NewModelTextEntry()},
		MergeFragment{Fragment: "a", Loading: true},
		FailLast{Msg: "boom"},
		AppendEntry{Entry: NewUserEntry("again")},
		AppendEntry{Entry: NewDashboardEntry()},
		SetCharts{Charts: []ChartSpec{{Type: ChartPie}}},
		FinishTurn{},
	}
	for _, a := range steps {
		s = Reduce(s, a)
		loading := 0
		for i, e := range s.Transcript {
			if e.Loading {
				loading++
				if i != len(s.Transcript)-1 {
					t.Fatalf("loading entry at index %d is not last after %T", i, a)
				}
			}
		}
		if loading > 1 {
			t.Fatalf("%d loading entries after %T", loading, a)
		}
	}
}

func TestReduce_SetChartsFinalizesDashboardEntry(t *testing.T) {
	s := Reduce(SessionState{}, AppendEntry{Entry: NewDashboardEntry()})
	charts := []ChartSpec{
		{Type: ChartBar, XKey: "month", Series: []string{"sales"}, Data: []Row{{"month": "Jan", "sales": 10.0}}},
		{Type: ChartPie, ValueKey: "v", NameKey: "n", Data: []Row{{"n": "a", "v": 1.0}}},
	}

	s = Reduce(s, SetCharts{Charts: charts})
	s = Reduce(s, FinishTurn{})

	last, _ := s.LastEntry()
	if last.Kind != KindDashboard || len(last.Charts) != 2 || last.Loading {
		t.Errorf("unexpected dashboard entry: %+v", last)
	}
}

// stubSession is a do-nothing ChatSession for state tests.
type stubSession struct{}

func (stubSession) Query(context.Context, string, Task) (*AnalysisResult, error) { return nil, nil }

func (stubSession) QueryStream(context.Context, string, Task) (<-chan string, <-chan error) {
	frags := make(chan string)
	errs := make(chan error)
	close(frags)
	close(errs)
	return frags, errs
}

// Package orchestrator coordinates the lifecycle of a data-analysis
// conversation: dataset ingestion, query turns and the folding of streamed
// or one-shot responses into the transcript. It owns the single mutable
// state slot; every change flows through core.Reduce so observers only ever
// see consistent snapshots.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/datachat/classify"
	"github.com/hupe1980/datachat/core"
	"github.com/hupe1980/datachat/logging"
	"github.com/hupe1980/datachat/parser"
)

// DefaultMaxUploadBytes is the upload size cap enforced before any parse
// attempt (10 MiB).
const DefaultMaxUploadBytes int64 = 10 << 20

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Parser turns uploaded files into rows. Defaults to the CSV parser.
	Parser core.FileParser
	// MaxUploadBytes caps accepted file sizes. Defaults to 10 MiB.
	MaxUploadBytes int64
	// DefaultTask is used when SubmitQuery receives an empty task.
	DefaultTask core.Task
	// OnChange is invoked with each new state snapshot after a transition.
	OnChange func(core.SessionState)
	// Logger receives structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Orchestrator drives one analysis session. One turn (file ingest or query
// submission) is active at a time; the session loading flag is the gate
// preventing a second turn from starting. Public methods are safe for
// concurrent use.
type Orchestrator struct {
	factory core.ChatFactory
	parser  core.FileParser

	maxUploadBytes int64
	defaultTask    core.Task
	onChange       func(core.SessionState)
	logger         logging.Logger

	mu    sync.Mutex
	state core.SessionState
	// gen stamps the active turn. It is bumped whenever dataset-derived
	// state is replaced (ingest, reset) so a stale in-flight stream from a
	// superseded turn can never merge into the fresh session.
	gen uint64
}

// New constructs an Orchestrator with optional overrides.
func New(factory core.ChatFactory, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Parser:         parser.NewCSV(),
		MaxUploadBytes: DefaultMaxUploadBytes,
		DefaultTask:    core.TaskInsights,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		factory:        factory,
		parser:         opts.Parser,
		maxUploadBytes: opts.MaxUploadBytes,
		defaultTask:    opts.DefaultTask,
		onChange:       opts.OnChange,
		logger:         opts.Logger,
	}
}

// State returns the current state snapshot.
func (o *Orchestrator) State() core.SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SetQuery updates the pending query text (typically mirrored from an input
// widget).
func (o *Orchestrator) SetQuery(text string) {
	o.dispatch(core.SetQuery{Text: text})
}

// Reset clears the conversation, keeping the ingested dataset when keepFile
// is set. Any in-flight stream is superseded and its remaining fragments are
// discarded.
func (o *Orchestrator) Reset(keepFile bool) {
	o.mu.Lock()
	o.gen++
	o.state = core.Reduce(o.state, core.Reset{KeepFile: keepFile})
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
}

// IngestFile validates, parses and binds a chat session to the uploaded
// dataset. Rows, raw text and chat handle are published in one transition;
// on failure the session is fully reset and the error message surfaced.
func (o *Orchestrator) IngestFile(ctx context.Context, file core.File) error {
	gen, err := o.beginTurn()
	if err != nil {
		return err
	}

	if size := fileSize(file); size > o.maxUploadBytes {
		msg := fmt.Sprintf("File is too large (%d bytes). The maximum upload size is %d bytes.", size, o.maxUploadBytes)
		o.logger.Warn("upload rejected", "file", file.Name, "size", size)
		o.resetWithError(msg)
		return &ValidationError{Msg: msg}
	}

	if !o.merge(gen, core.Reset{KeepFile: true}) {
		return nil
	}
	o.merge(gen, core.StartLoading{})
	o.merge(gen, core.SetFile{File: &file})

	start := time.Now()
	rows, raw, err := o.parser.Parse(ctx, file)
	if err != nil {
		o.logger.Error("dataset parse failed", "file", file.Name, "error", err.Error())
		o.resetWithError(err.Error())
		return &ParseError{Msg: err.Error(), Err: err}
	}
	o.logger.Info("dataset parsed", "file", file.Name, "rows", len(rows), "duration", time.Since(start))

	session, err := o.factory.New(ctx, raw)
	if err != nil {
		o.logger.Error("chat session creation failed", "file", file.Name, "error", err.Error())
		o.resetWithError(err.Error())
		return &ParseError{Msg: err.Error(), Err: err}
	}

	// The turn generation is rechecked so a reset issued mid-parse cannot
	// be overwritten by this ingest's results.
	if !o.merge(gen, core.SetParsedData{Rows: rows, Raw: raw, Chat: session}) {
		return nil
	}
	o.merge(gen, core.FinishTurn{})
	return nil
}

// SubmitQuery runs one query turn against the ingested dataset. Dashboard
// tasks use the one-shot path; every other task streams fragments which are
// merged into the transcript in strict arrival order. Failures terminate
// only this turn: the dataset and chat session stay intact for a retry.
func (o *Orchestrator) SubmitQuery(ctx context.Context, query string, task core.Task) error {
	gen, err := o.beginTurn()
	if err != nil {
		return err
	}

	o.mu.Lock()
	session := o.state.Chat
	hasDataset := o.state.HasDataset()
	o.mu.Unlock()

	if !hasDataset {
		msg := "No dataset loaded. Upload a file before asking questions."
		o.dispatch(core.SetError{Msg: msg})
		return &ValidationError{Msg: msg}
	}
	if strings.TrimSpace(query) == "" {
		msg := "Please enter a question about your data."
		o.dispatch(core.SetError{Msg: msg})
		return &ValidationError{Msg: msg}
	}
	if task == "" {
		task = o.defaultTask
	}

	if !o.merge(gen, core.StartLoading{}) {
		return nil
	}
	o.merge(gen, core.SetQuery{Text: ""})
	o.merge(gen, core.AppendEntry{Entry: core.NewUserEntry(query)})

	o.logger.Debug("query turn started", "task", string(task))

	if task == core.TaskDashboard {
		return o.runDashboardTurn(ctx, session, gen, query)
	}
	return o.runStreamingTurn(ctx, session, gen, query, task)
}

func (o *Orchestrator) runDashboardTurn(
	ctx context.Context,
	session core.ChatSession,
	gen uint64,
	query string,
) error {
	o.merge(gen, core.AppendEntry{Entry: core.NewDashboardEntry()})

	start := time.Now()
	result, err := session.Query(ctx, query, core.TaskDashboard)
	if err != nil {
		return o.failTurn(gen, err)
	}
	o.logger.Info("dashboard turn completed", "charts", len(result.Charts), "duration", time.Since(start))

	if !o.merge(gen, core.SetCharts{Charts: result.Charts}) {
		return nil
	}
	o.merge(gen, core.FinishTurn{})
	return nil
}

func (o *Orchestrator) runStreamingTurn(
	ctx context.Context,
	session core.ChatSession,
	gen uint64,
	query string,
	task core.Task,
) error {
	o.merge(gen, core.AppendEntry{Entry: core.NewModelTextEntry()})

	start := time.Now()
	frags, errCh := session.QueryStream(ctx, query, task)

	fragments := 0
	for f := range frags {
		fragments++
		if !o.merge(gen, core.MergeFragment{Fragment: f, Loading: true}) {
			// Superseded by a reset or new ingest; drain without merging so
			// the producer goroutine can finish.
			for range frags {
			}
			<-errCh
			o.logger.Debug("stream superseded", "task", string(task), "fragments", fragments)
			return nil
		}
	}
	if err := <-errCh; err != nil {
		o.logger.Error("streaming turn failed", "task", string(task), "error", err.Error())
		return o.failTurn(gen, err)
	}
	o.logger.Info("streaming turn completed", "task", string(task), "fragments", fragments, "duration", time.Since(start))

	o.merge(gen, core.FinishTurn{})
	return nil
}

// failTurn classifies the raw failure and converts the active loading entry
// into a visible error entry.
func (o *Orchestrator) failTurn(gen uint64, err error) error {
	category := classify.Classify(err.Error())
	msg := classify.UserMessage(category, err.Error())
	o.logger.Warn("turn failed", "category", category.String(), "error", err.Error())
	o.merge(gen, core.FailLast{Msg: msg})
	return &TransportError{UserMsg: msg, Err: err}
}

// beginTurn enforces the single-turn gate and returns the generation stamp
// for the new turn.
func (o *Orchestrator) beginTurn() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Loading {
		return 0, &ValidationError{Msg: "An analysis turn is already in progress."}
	}
	o.gen++
	return o.gen, nil
}

// resetWithError performs a full reset, then surfaces the message so the
// user sees why the session emptied.
func (o *Orchestrator) resetWithError(msg string) {
	o.mu.Lock()
	o.gen++
	o.state = core.Reduce(o.state, core.Reset{KeepFile: false})
	o.state = core.Reduce(o.state, core.SetError{Msg: msg})
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
}

// dispatch applies an action unconditionally.
func (o *Orchestrator) dispatch(a core.Action) {
	o.mu.Lock()
	o.state = core.Reduce(o.state, a)
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
}

// merge applies an action only when the turn generation is still current,
// reporting whether the action was applied. This is the guard keeping a
// stale, superseded stream from mutating a fresh session.
func (o *Orchestrator) merge(gen uint64, a core.Action) bool {
	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		return false
	}
	o.state = core.Reduce(o.state, a)
	snapshot := o.state
	o.mu.Unlock()
	o.notify(snapshot)
	return true
}

func (o *Orchestrator) notify(s core.SessionState) {
	if o.onChange != nil {
		o.onChange(s)
	}
}

func fileSize(f core.File) int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Content))
}

// Package datachat provides a high-level façade over the session
// orchestrator and its collaborators (file parsing, chat providers, error
// classification & logging) enabling rapid construction of data-analysis
// chat frontends. Most applications interact with this package by:
//  1. Creating a DataChat via New() with a chat provider factory
//     (chat/openai, chat/anthropic, or a custom implementation)
//  2. Ingesting a dataset file (IngestFile)
//  3. Submitting query turns (SubmitQuery) and rendering the state
//     snapshots delivered through the OnChange callback
//
// The façade delegates turn coordination to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply a
// structured logger.
package datachat

import (
	"context"

	"github.com/hupe1980/datachat/core"
	"github.com/hupe1980/datachat/logging"
	"github.com/hupe1980/datachat/orchestrator"
	"github.com/hupe1980/datachat/parser"
)

// Options configures the DataChat instance.
type Options struct {
	// Parser turns uploaded files into ordered rows. Defaults to the CSV
	// parser with standard settings.
	Parser core.FileParser

	// MaxUploadBytes caps accepted file sizes; uploads above the cap are
	// rejected before any parse attempt. Defaults to 10 MiB.
	MaxUploadBytes int64

	// DefaultTask selects the response shape when a query is submitted
	// without an explicit task. Defaults to insights.
	DefaultTask core.Task

	// OnChange is invoked with each new state snapshot after a transition,
	// typically driving a render.
	OnChange func(core.SessionState)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// DataChat is the high-level façade aggregating the orchestrator and its
// collaborators.
type DataChat struct {
	opts Options
	orch *orchestrator.Orchestrator
}

// New creates a new DataChat instance with optional overrides. Any unset
// collaborator is initialized with a sensible default.
func New(factory core.ChatFactory, optFns ...func(o *Options)) *DataChat {
	opts := Options{
		Parser:         parser.NewCSV(),
		MaxUploadBytes: orchestrator.DefaultMaxUploadBytes,
		DefaultTask:    core.TaskInsights,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	orch := orchestrator.New(factory, func(o *orchestrator.Options) {
		o.Parser = opts.Parser
		o.MaxUploadBytes = opts.MaxUploadBytes
		o.DefaultTask = opts.DefaultTask
		o.OnChange = opts.OnChange
		o.Logger = opts.Logger
	})

	return &DataChat{opts: opts, orch: orch}
}

// IngestFile validates and parses the uploaded dataset and binds a fresh
// chat session to it.
func (d *DataChat) IngestFile(ctx context.Context, file core.File) error {
	return d.orch.IngestFile(ctx, file)
}

// SubmitQuery runs one query turn against the ingested dataset.
func (d *DataChat) SubmitQuery(ctx context.Context, query string, task core.Task) error {
	return d.orch.SubmitQuery(ctx, query, task)
}

// SetQuery updates the pending query text.
func (d *DataChat) SetQuery(text string) { d.orch.SetQuery(text) }

// Reset clears the conversation, keeping the dataset when keepFile is set.
func (d *DataChat) Reset(keepFile bool) { d.orch.Reset(keepFile) }

// State returns the current state snapshot.
func (d *DataChat) State() core.SessionState { return d.orch.State() }

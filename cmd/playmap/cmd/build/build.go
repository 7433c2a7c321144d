package build

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/playmap"
	"github.com/agentstation/playmap/internal/cmd/application"
	"github.com/agentstation/playmap/internal/cmd/output"
	"github.com/agentstation/playmap/internal/cmd/table"
	"github.com/agentstation/playmap/internal/store"
	"github.com/agentstation/playmap/pkg/catalog"
	"github.com/agentstation/playmap/pkg/errors"
	"github.com/agentstation/playmap/pkg/logging"
	"github.com/agentstation/playmap/pkg/provenance"
	"github.com/agentstation/playmap/pkg/save"
	"github.com/agentstation/playmap/pkg/sources"
)

// Summary is the machine-readable build result.
type Summary struct {
	RunID        string           `json:"run_id"`
	Out          string           `json:"out"`
	Metadata     catalog.Metadata `json:"metadata"`
	Dropped      int              `json:"dropped"`
	Added        int              `json:"added"`
	Removed      int              `json:"removed"`
	PriceChanges int              `json:"price_changes"`
	Snapshot     bool             `json:"snapshot_recorded"`
	SourceErrors []string         `json:"source_errors,omitempty"`
}

// builder carries one build invocation's state across rebuilds.
type builder struct {
	app      application.Application
	flags    *Flags
	logger   *zerolog.Logger
	specs    []sources.Spec
	tracker  provenance.Tracker
	out      string
	snapshot string
}

// Execute runs the build and, with --watch, keeps rebuilding until the
// command context is canceled.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	printer, err := output.ForCommand(cmd.OutOrStdout(), app.OutputFormat())
	if err != nil {
		return err
	}

	settings := app.Settings()
	b := &builder{
		app:      app,
		flags:    flags,
		logger:   app.Logger(),
		specs:    settings.BuildSpecs(flags.Sources...),
		out:      flags.Out,
		snapshot: flags.SnapshotDB,
	}
	if b.out == "" {
		b.out = settings.Path(settings.CatalogOut)
	}
	if b.snapshot == "" {
		b.snapshot = settings.Path(settings.SnapshotDB)
	}
	if b.out == "" {
		return &errors.ConfigError{Component: "catalog_out", Message: "no output path; set --out or catalog_out"}
	}

	ctx := logging.WithLogger(cmd.Context(), b.logger)

	opts := []playmap.Option{playmap.WithFilter(flags.filter(cmd, settings))}
	if flags.Provenance != "" {
		b.tracker = provenance.NewTracker(true)
		opts = append(opts, playmap.WithProvenance(b.tracker))
	}
	if flags.Watch > 0 {
		opts = append(opts, playmap.WithAutoRebuild(flags.Watch, b.inputs))
	}
	client, err := app.Client(opts...)
	if err != nil {
		return err
	}

	in, sourceErrs, err := b.load(ctx)
	if err != nil {
		return err
	}
	res, err := client.Rebuild(ctx, in)
	if err != nil {
		return err
	}
	summary, err := b.publish(ctx, client, res.Document)
	if err != nil {
		return err
	}
	summary.RunID = res.RunID
	summary.Dropped = res.Dropped
	summary.Added = len(res.Changes.Added)
	summary.Removed = len(res.Changes.Removed)
	summary.PriceChanges = len(res.Changes.PriceChanges)
	for _, e := range sourceErrs {
		summary.SourceErrors = append(summary.SourceErrors, e.Error())
	}

	b.logger.Info().
		Str("run_id", res.RunID).
		Int("total_raw", res.Document.Metadata.Stats.TotalRaw).
		Int("total_kept", res.Document.Metadata.Stats.TotalKept).
		Int("dropped", res.Dropped).
		Str("out", b.out).
		Dur("duration", res.Duration).
		Msg("Catalog built")

	if err := printer.Print(table.StatsToTableData(summary.Metadata), summary); err != nil {
		return err
	}

	if flags.Watch > 0 {
		return b.watch(ctx, client, res.Document.Metadata.Fingerprint)
	}
	return nil
}

// load reads every build input. Per-source failures are logged and
// returned alongside the inputs.
func (b *builder) load(ctx context.Context) (playmap.Inputs, []error, error) {
	loader := sources.NewLoader()
	if n := b.app.Settings().LoadConcurrency; n > 0 {
		loader.Concurrency = n
	}
	res, err := loader.Load(ctx, b.specs)
	if err != nil {
		return playmap.Inputs{}, nil, err
	}
	for _, e := range res.Errors {
		b.logger.Warn().Err(e).Msg("Skipping source")
	}
	return playmap.InputsFrom(res), res.Errors, nil
}

func (b *builder) inputs(ctx context.Context) (playmap.Inputs, error) {
	in, _, err := b.load(logging.WithLogger(ctx, b.logger))
	return in, err
}

// publish writes the catalog, provenance and snapshot for doc.
func (b *builder) publish(ctx context.Context, client playmap.Client, doc *catalog.Document) (*Summary, error) {
	if err := client.Save(save.WithPath(b.out)); err != nil {
		return nil, err
	}
	if b.tracker != nil {
		if err := provenance.Save(b.flags.Provenance, b.tracker.Map()); err != nil {
			return nil, err
		}
	}

	summary := &Summary{Out: b.out, Metadata: doc.Metadata}
	if b.snapshot != "" {
		recorded, err := recordSnapshot(ctx, b.snapshot, doc)
		if err != nil {
			return nil, err
		}
		summary.Snapshot = recorded
	}
	return summary, nil
}

// watch saves every newly published catalog until ctx is done. Rebuilds
// themselves run on the engine's auto-rebuild ticker.
func (b *builder) watch(ctx context.Context, client playmap.Client, last string) error {
	client.OnTitleAdded(func(e catalog.CanonicalEntity) {
		b.logger.Info().Str("title", e.Title).Msg("Title added")
	})
	client.OnTitleRemoved(func(e catalog.CanonicalEntity) {
		b.logger.Info().Str("title", e.Title).Msg("Title removed")
	})

	b.logger.Info().Dur("interval", b.flags.Watch).Msg("Watching sources")
	ticker := time.NewTicker(b.flags.Watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Watch stopped")
			return client.AutoRebuildOff()
		case <-ticker.C:
			doc, err := client.Catalog()
			if err != nil || doc.Metadata.Fingerprint == last {
				continue
			}
			if _, err := b.publish(ctx, client, doc); err != nil {
				b.logger.Error().Err(err).Msg("Failed to publish rebuilt catalog")
				continue
			}
			last = doc.Metadata.Fingerprint
			b.logger.Info().
				Str("run_id", doc.Metadata.RunID).
				Int("total_kept", doc.Metadata.Stats.TotalKept).
				Msg("Catalog rebuilt")
		}
	}
}

func recordSnapshot(ctx context.Context, path string, doc *catalog.Document) (bool, error) {
	snapshots, err := store.OpenSnapshotStore(ctx, path)
	if err != nil {
		return false, err
	}
	defer snapshots.Close()
	return snapshots.Record(ctx, doc)
}

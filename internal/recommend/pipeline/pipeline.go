// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/recommend"
	"github.com/tomtom215/cadence/internal/recommend/algorithms"
	"github.com/tomtom215/cadence/internal/recommend/storage"
)

// ErrRunInProgress is returned by Run when another run holds the pipeline.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Phase names reported to metrics.
const (
	phaseLoad       = "load"
	phaseNormalize  = "normalize"
	phaseTrain      = "train"
	phaseCheckpoint = "checkpoint"
	phasePredict    = "predict"
	phaseRank       = "rank"
	phaseFallback   = "fallback"
	phasePersist    = "persist"
	phasePublish    = "publish"
)

// Source provides the pipeline inputs: the Ratings Store, the Social Graph
// Store and the Catalog.
type Source interface {
	Interactions(ctx context.Context) ([]recommend.Interaction, error)
	FriendEdges(ctx context.Context) ([]recommend.FriendEdge, error)
	CatalogIDs(ctx context.Context) (map[string]struct{}, error)
}

// Sink is the Recommendation Store.
type Sink interface {
	ReplaceRecommendations(ctx context.Context, runID string, users []string, rows []recommend.RecommendationRow) (int, error)
	AppendRecommendations(ctx context.Context, runID string, rows []recommend.RecommendationRow) (int, error)
}

// RunRecorder keeps the history of runs.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *models.RunSummary) error
}

// Checkpointer stores trained models.
type Checkpointer interface {
	SaveLatentModel(ctx context.Context, model *algorithms.LatentModel, meta storage.ModelMetadata) (*storage.ModelMetadata, error)
	Prune(ctx context.Context, name string, keepVersions int) (int, error)
}

// Publisher announces finished runs.
type Publisher interface {
	Publish(ctx context.Context, event *models.PlaylistsUpdated) error
}

// Options wires the collaborators of a Pipeline. Source and Sink are
// required; the rest are optional.
type Options struct {
	Source      Source
	Sink        Sink
	Runs        RunRecorder
	Checkpoints Checkpointer
	Publisher   Publisher

	// RetainVersions is how many checkpoints survive a run. 0 keeps all.
	RetainVersions int

	// Logger overrides the component logger.
	Logger *zerolog.Logger
}

// Pipeline owns everything a run needs: the stores, the configuration, the
// checkpoint store and the event publisher. Only one run executes at a time.
type Pipeline struct {
	cfg    *recommend.Config
	opts   Options
	logger zerolog.Logger

	runMu   sync.Mutex
	running atomic.Bool

	lastMu sync.RWMutex
	last   *RunStats
}

// New validates the configuration and creates a Pipeline.
func New(cfg *recommend.Config, opts Options) (*Pipeline, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if opts.Source == nil {
		return nil, errors.New("pipeline source is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("pipeline sink is required")
	}

	logger := logging.WithComponent("pipeline")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Pipeline{
		cfg:    cfg.Clone(),
		opts:   opts,
		logger: logger,
	}, nil
}

// Config returns a copy of the run configuration.
func (p *Pipeline) Config() *recommend.Config {
	return p.cfg.Clone()
}

// Running reports whether a run is executing.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// LastRun returns the stats of the most recent finished run, or nil.
func (p *Pipeline) LastRun() *RunStats {
	p.lastMu.RLock()
	defer p.lastMu.RUnlock()
	if p.last == nil {
		return nil
	}
	c := *p.last
	return &c
}

// Run executes one batch: load, normalize, train, checkpoint, predict, rank,
// fallback and persist. A summary of the run is recorded whether it succeeds
// or not, and a PlaylistsUpdated event is published after a successful run.
//
// Run returns ErrRunInProgress without waiting if another run is active.
// The returned stats are non-nil whenever the run started.
func (p *Pipeline) Run(ctx context.Context) (*RunStats, error) {
	if !p.runMu.TryLock() {
		metrics.RecordPipelineRun(metrics.OutcomeSkipped, 0)
		return nil, ErrRunInProgress
	}
	defer p.runMu.Unlock()

	p.running.Store(true)
	defer p.running.Store(false)

	stats := &RunStats{
		RunID:       logging.GenerateRunID(),
		StartedAt:   time.Now().UTC(),
		PersistMode: p.cfg.PersistMode,
	}

	ctx = logging.ContextWithLogger(ctx, p.logger)
	ctx = logging.ContextWithRunID(ctx, stats.RunID)
	logging.Ctx(ctx).Info().
		Int("list_length", p.cfg.ListLength).
		Int("grid_points", p.cfg.Grid.Size()).
		Int("folds", p.cfg.Folds).
		Str("persist_mode", string(p.cfg.PersistMode)).
		Msg("Pipeline run started")

	err := p.execute(ctx, stats)

	stats.FinishedAt = time.Now().UTC()
	stats.Err = err
	stats.Outcome = outcomeOf(err)

	p.record(ctx, stats)
	if err == nil {
		p.publish(ctx, stats)
	}

	metrics.RecordPipelineRun(stats.Outcome, stats.Duration())

	p.lastMu.Lock()
	p.last = stats
	p.lastMu.Unlock()

	log := logging.Ctx(ctx)
	switch stats.Outcome {
	case metrics.OutcomeSuccess:
		log.Info().
			Dur("duration", stats.Duration()).
			Int("users", stats.Users).
			Int("rows_written", stats.RowsWritten).
			Int("short_lists", stats.Fallback.ShortLists).
			Msg("Pipeline run completed")
	case metrics.OutcomeNoData:
		log.Warn().Err(err).Msg("Pipeline run skipped: not enough data")
	default:
		log.Error().Err(err).Str("outcome", stats.Outcome).Msg("Pipeline run failed")
	}

	return stats, err
}

// execute runs the phases in order. Each phase is fully materialized before
// the next one starts.
func (p *Pipeline) execute(ctx context.Context, stats *RunStats) error {
	cfg := p.cfg
	log := logging.Ctx(ctx)

	var in *inputs
	if err := observe(phaseLoad, func() (err error) {
		in, err = p.load(ctx)
		return err
	}); err != nil {
		return err
	}
	stats.Interactions = len(in.interactions)
	stats.FriendEdges = len(in.edges)
	stats.Songs = len(recommend.Songs(in.interactions))
	users := recommend.UserUniverse(in.interactions, in.edges)
	stats.Users = len(users)

	log.Info().
		Int("interactions", stats.Interactions).
		Int("users", stats.Users).
		Int("songs", stats.Songs).
		Int("friend_edges", stats.FriendEdges).
		Int("catalog", len(in.catalog)).
		Msg("Loaded training data")

	var normalized []recommend.NormalizedInteraction
	if err := observe(phaseNormalize, func() (err error) {
		normalized, err = recommend.Normalize(in.interactions)
		return err
	}); err != nil {
		return err
	}

	var trained *algorithms.TrainResult
	trainStart := time.Now()
	if err := observe(phaseTrain, func() (err error) {
		trained, err = algorithms.Train(ctx, normalized, cfg)
		return err
	}); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	trainDuration := time.Since(trainStart)

	best := trained.Search.Best
	stats.Best = best
	stats.GridPoints = len(trained.Search.Points)
	metrics.RecordGridSearch(best.Accuracy.RMSE, best.Accuracy.MAE, stats.GridPoints, len(normalized))
	log.Info().
		Int("epochs", best.Params.Epochs).
		Float64("learning_rate", best.Params.LearningRate).
		Float64("regularization", best.Params.Regularization).
		Float64("rmse", best.Accuracy.RMSE).
		Float64("mae", best.Accuracy.MAE).
		Dur("duration", trainDuration).
		Msg("Model trained")

	measure(phaseCheckpoint, func() {
		stats.ModelVersion = p.checkpoint(ctx, trained, stats.RunID, trainDuration)
	})

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run aborted before prediction: %w", err)
	}

	var predictions []recommend.Prediction
	if err := observe(phasePredict, func() (err error) {
		predictions, err = algorithms.Predict(ctx, trained.Model, in.interactions, algorithms.PredictOptions{
			Clip:    cfg.Clip,
			Workers: cfg.Workers,
		})
		return err
	}); err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	stats.Predictions = len(predictions)
	metrics.RecordPredictions(len(predictions))

	var lists map[string]*recommend.RankedList
	measure(phaseRank, func() {
		lists = recommend.Rank(predictions, users, cfg.ListLength)
	})

	var fallback recommend.FallbackStats
	measure(phaseFallback, func() {
		lists, fallback = recommend.Fallback(lists, in.edges, p.fallbackOptions(in))
	})
	stats.Fallback = fallback
	metrics.RecordFallback(fallback.UsersBackfilled, fallback.EntriesAppended, len(fallback.Gaps), fallback.ShortLists)
	for _, gap := range fallback.Gaps {
		log.Debug().Str("user_id", gap.UserID).Str("friend_id", gap.FriendID).Msg("Friend has no ranked list")
	}

	if err := observe(phasePersist, func() (err error) {
		stats.RowsWritten, err = p.persist(ctx, stats.RunID, users, lists)
		return err
	}); err != nil {
		return err
	}
	metrics.RecordPersist(string(cfg.PersistMode), stats.RowsWritten)

	return nil
}

// inputs is the materialized result of the load phase.
type inputs struct {
	interactions []recommend.Interaction
	edges        []recommend.FriendEdge
	catalog      map[string]struct{}
}

func (p *Pipeline) load(ctx context.Context) (*inputs, error) {
	interactions, err := p.opts.Source.Interactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	edges, err := p.opts.Source.FriendEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load friend edges: %w", err)
	}
	catalog, err := p.opts.Source.CatalogIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return &inputs{interactions: interactions, edges: edges, catalog: catalog}, nil
}

// checkpoint saves the trained model and prunes old versions. It returns the
// saved version, or 0 when nothing was saved.
func (p *Pipeline) checkpoint(ctx context.Context, trained *algorithms.TrainResult, runID string, trainDuration time.Duration) int {
	if p.opts.Checkpoints == nil {
		return 0
	}
	log := logging.Ctx(ctx)

	best := trained.Search.Best.Accuracy
	meta, err := p.opts.Checkpoints.SaveLatentModel(ctx, trained.Model, storage.ModelMetadata{
		RunID:              runID,
		RMSE:               best.RMSE,
		MAE:                best.MAE,
		TrainingDurationMS: trainDuration.Milliseconds(),
	})
	metrics.RecordCheckpoint(err)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to checkpoint model")
		return 0
	}
	log.Debug().Int("version", meta.Version).Int64("size_bytes", meta.SizeBytes).Msg("Model checkpoint saved")

	if p.opts.RetainVersions > 0 {
		removed, err := p.opts.Checkpoints.Prune(ctx, storage.LatentModelName, p.opts.RetainVersions)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to prune model checkpoints")
		} else if removed > 0 {
			log.Debug().Int("removed", removed).Msg("Pruned model checkpoints")
		}
	}

	return meta.Version
}

func (p *Pipeline) fallbackOptions(in *inputs) recommend.FallbackOptions {
	opts := recommend.FallbackOptions{
		ListLength:       p.cfg.ListLength,
		Dedup:            p.cfg.Fallback.Dedup,
		RestrictToUnseen: p.cfg.Fallback.RestrictToUnseen,
		Workers:          p.cfg.Workers,
	}
	if opts.RestrictToUnseen {
		opts.Seen = recommend.NewSeenSet(in.interactions)
		// An empty catalog means none was loaded, not that every song is unknown.
		if len(in.catalog) > 0 {
			opts.Catalog = in.catalog
		}
	}
	return opts
}

// persist writes every user's final list in one batch.
func (p *Pipeline) persist(ctx context.Context, runID string, users []string, lists map[string]*recommend.RankedList) (int, error) {
	sorted := append([]string(nil), users...)
	sort.Strings(sorted)

	var rows []recommend.RecommendationRow
	for _, u := range sorted {
		if l := lists[u]; l != nil {
			rows = append(rows, l.Rows()...)
		}
	}

	switch p.cfg.PersistMode {
	case recommend.PersistAppend:
		return p.opts.Sink.AppendRecommendations(ctx, runID, rows)
	default:
		return p.opts.Sink.ReplaceRecommendations(ctx, runID, sorted, rows)
	}
}

// record stores the run summary. It runs even when the run context was
// cancelled so that aborted runs still show up in the history.
func (p *Pipeline) record(ctx context.Context, stats *RunStats) {
	if p.opts.Runs == nil {
		return
	}
	if err := p.opts.Runs.SaveRun(context.WithoutCancel(ctx), stats.Summary()); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to record run summary")
	}
}

func (p *Pipeline) publish(ctx context.Context, stats *RunStats) {
	if p.opts.Publisher == nil {
		return
	}
	event := &models.PlaylistsUpdated{
		EventID:     uuid.New().String(),
		Type:        models.EventTypePlaylistsUpdated,
		RunID:       stats.RunID,
		PersistMode: string(stats.PersistMode),
		Users:       stats.Users,
		RowsWritten: stats.RowsWritten,
		ShortLists:  stats.Fallback.ShortLists,
		FinishedAt:  stats.FinishedAt,
	}
	measure(phasePublish, func() {
		if err := p.opts.Publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish playlists update")
		}
	})
}

// observe times fn under the given phase label.
func observe(phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObservePhase(phase, time.Since(start))
	return err
}

func measure(phase string, fn func()) {
	start := time.Now()
	fn()
	metrics.ObservePhase(phase, time.Since(start))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, recommend.ErrDataInsufficient):
		return metrics.OutcomeNoData
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeFailed
	}
}

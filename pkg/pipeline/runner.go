package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tbruckner/warpviz/pkg/cache"
	"github.com/tbruckner/warpviz/pkg/checker"
	"github.com/tbruckner/warpviz/pkg/colormap"
	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/observability"
	"github.com/tbruckner/warpviz/pkg/tools"
	"github.com/tbruckner/warpviz/pkg/volume"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, toolchain and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Tools  tools.Toolchain
}

// NewRunner creates a runner with the given cache, keyer and toolchain.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, tc tools.Toolchain) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Tools:  tc,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this invocation in logs and hooks.
	RunID string `json:"run_id"`

	// Artifact paths.
	LabelPath    string          `json:"label_path"`
	CheckerPath  string          `json:"checker_path"`
	ColormapPath string          `json:"colormap_path"`
	Transform    tools.Transform `json:"transform"`
	DeformedPath string          `json:"deformed_path"`
	SurfacePath  string          `json:"surface_path"`

	// Stats contains timing information.
	Stats Stats `json:"stats"`

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo `json:"cache_info"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SegmentTime  time.Duration `json:"segment_time"`
	CheckerTime  time.Duration `json:"checker_time"`
	ColormapTime time.Duration `json:"colormap_time"`
	RegisterTime time.Duration `json:"register_time"`
	WarpTime     time.Duration `json:"warp_time"`
	SurfaceTime  time.Duration `json:"surface_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SegmentHit  bool `json:"segment_hit"`
	CheckerHit  bool `json:"checker_hit"`
	ColormapHit bool `json:"colormap_hit"`
	RegisterHit bool `json:"register_hit"`
	WarpHit     bool `json:"warp_hit"`
	SurfaceHit  bool `json:"surface_hit"`
}

// Execute runs the complete pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{RunID: uuid.NewString()}

	for _, dir := range []string{opts.WorkDir, opts.OutDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create directory %s", dir)
		}
	}

	// Stage 1: Segment (skipped when a label volume is supplied)
	start := time.Now()
	label := opts.Label
	if label == "" {
		var hit bool
		var err error
		label, hit, err = r.stageSegment(ctx, result.RunID, opts)
		if err != nil {
			return nil, err
		}
		result.CacheInfo.SegmentHit = hit
	}
	result.LabelPath = label
	result.Stats.SegmentTime = time.Since(start)
	r.Logger.Info("segmentation ready", "label", label, "duration", result.Stats.SegmentTime)

	// Stage 2: Checkerboard
	start = time.Now()
	checkerPath, checkerHit, err := r.stageChecker(ctx, result.RunID, label, opts)
	if err != nil {
		return nil, err
	}
	result.CheckerPath = checkerPath
	result.CacheInfo.CheckerHit = checkerHit
	result.Stats.CheckerTime = time.Since(start)
	r.Logger.Info("checkerboard generated", "path", checkerPath, "grid", opts.GridSize,
		"axis", opts.Axis, "mode", opts.Mode, "duration", result.Stats.CheckerTime)

	// Stage 3: Colormap (independent of the volumes)
	start = time.Now()
	tablePath, tableHit, err := r.stageColormap(ctx, result.RunID, opts)
	if err != nil {
		return nil, err
	}
	result.ColormapPath = tablePath
	result.CacheInfo.ColormapHit = tableHit
	result.Stats.ColormapTime = time.Since(start)
	r.Logger.Info("color table ready", "path", tablePath, "duration", result.Stats.ColormapTime)

	// Stage 4: Register (skipped when a precomputed transform is supplied)
	start = time.Now()
	if opts.HasTransform() {
		result.Transform = opts.Transform()
	} else {
		t, hit, err := r.stageRegister(ctx, result.RunID, opts)
		if err != nil {
			return nil, err
		}
		result.Transform = t
		result.CacheInfo.RegisterHit = hit
	}
	result.Stats.RegisterTime = time.Since(start)
	r.Logger.Info("transform ready", "inverse_warp", result.Transform.InverseWarpPath,
		"duration", result.Stats.RegisterTime)

	// Stage 5: Warp
	start = time.Now()
	deformed, warpHit, err := r.stageWarp(ctx, result.RunID, result.Transform, checkerPath, opts)
	if err != nil {
		return nil, err
	}
	result.DeformedPath = deformed
	result.CacheInfo.WarpHit = warpHit
	result.Stats.WarpTime = time.Since(start)
	r.Logger.Info("checkerboard warped", "path", deformed, "duration", result.Stats.WarpTime)

	// Stage 6: Surface
	start = time.Now()
	surface, surfaceHit, err := r.stageSurface(ctx, result.RunID, label, deformed, opts)
	if err != nil {
		return nil, err
	}
	result.SurfacePath = surface
	result.CacheInfo.SurfaceHit = surfaceHit
	result.Stats.SurfaceTime = time.Since(start)
	r.Logger.Info("surface extracted", "path", surface, "duration", result.Stats.SurfaceTime)

	return result, nil
}

// =============================================================================
// Stages
// =============================================================================

func (r *Runner) stageSegment(ctx context.Context, runID string, opts Options) (string, bool, error) {
	observability.Stage().OnStageStart(ctx, runID, StageSegment)
	start := time.Now()

	label, hit, err := r.segment(ctx, opts)

	observability.Stage().OnStageComplete(ctx, runID, StageSegment, time.Since(start), err)
	return label, hit, err
}

func (r *Runner) segment(ctx context.Context, opts Options) (string, bool, error) {
	if r.Tools.Segmenter == nil {
		return "", false, errors.New(errors.ErrCodeToolNotFound, "no segmenter configured")
	}

	anatHash, err := cache.HashFile(opts.Anat)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "anat volume %s", opts.Anat)
	}
	key := r.Keyer.SegmentKey(anatHash)
	label := opts.workPath("anat_seg.nii.gz")

	if hit, err := r.restore(ctx, key, label, opts.Refresh); err == nil && hit {
		return label, true, nil
	}

	out, err := r.Tools.Segmenter.Segment(ctx, opts.Anat, opts.workPath("anat"))
	if err != nil {
		return "", false, err
	}

	r.store(ctx, key, out, cache.TTLVolume)
	return out, false, nil
}

func (r *Runner) stageChecker(ctx context.Context, runID, label string, opts Options) (string, bool, error) {
	observability.Stage().OnStageStart(ctx, runID, StageChecker)
	start := time.Now()

	path, hit, err := r.checkerboard(ctx, label, opts)

	observability.Stage().OnStageComplete(ctx, runID, StageChecker, time.Since(start), err)
	return path, hit, err
}

func (r *Runner) checkerboard(ctx context.Context, label string, opts Options) (string, bool, error) {
	labelHash, err := cache.HashFile(label)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "label volume %s", label)
	}
	key := r.Keyer.CheckerKey(labelHash, cache.CheckerKeyOpts{
		GridSize: opts.GridSize,
		Axis:     int(opts.Axis),
		Mode:     string(opts.Mode),
		Colors:   opts.Colors,
	})
	out := opts.workPath("checkerboard.nii.gz")

	if hit, err := r.restore(ctx, key, out, opts.Refresh); err == nil && hit {
		return out, true, nil
	}

	labelVol, err := volume.Load(label)
	if err != nil {
		return "", false, err
	}
	board, err := checker.Generate(labelVol, opts.CheckerOptions())
	if err != nil {
		return "", false, err
	}
	if err := board.Save(out); err != nil {
		return "", false, err
	}

	r.store(ctx, key, out, cache.TTLVolume)
	return out, false, nil
}

func (r *Runner) stageColormap(ctx context.Context, runID string, opts Options) (string, bool, error) {
	observability.Stage().OnStageStart(ctx, runID, StageColormap)
	start := time.Now()

	path, hit, err := r.colormap(ctx, opts)

	observability.Stage().OnStageComplete(ctx, runID, StageColormap, time.Since(start), err)
	return path, hit, err
}

func (r *Runner) colormap(ctx context.Context, opts Options) (string, bool, error) {
	key := r.Keyer.ColormapKey(cache.ColormapKeyOpts{
		Dim:        opts.Dim,
		Bright:     opts.Bright,
		Downsample: opts.Downsample,
	})
	out := opts.outPath("colormap.json")

	if hit, err := r.restore(ctx, key, out, opts.Refresh); err == nil && hit {
		return out, true, nil
	}

	table, err := colormap.Generate(opts.ColormapOptions())
	if err != nil {
		return "", false, err
	}
	if err := table.WriteFile(out); err != nil {
		return "", false, err
	}

	r.store(ctx, key, out, cache.TTLTable)
	return out, false, nil
}

// transformBundle serializes the registration outputs for caching.
type transformBundle struct {
	Affine      []byte `json:"affine"`
	Warp        []byte `json:"warp"`
	InverseWarp []byte `json:"inverse_warp"`
}

func (r *Runner) stageRegister(ctx context.Context, runID string, opts Options) (tools.Transform, bool, error) {
	observability.Stage().OnStageStart(ctx, runID, StageRegister)
	start := time.Now()

	t, hit, err := r.register(ctx, opts)

	observability.Stage().OnStageComplete(ctx, runID, StageRegister, time.Since(start), err)
	return t, hit, err
}

func (r *Runner) register(ctx context.Context, opts Options) (tools.Transform, bool, error) {
	if r.Tools.Registrator == nil {
		return tools.Transform{}, false, errors.New(errors.ErrCodeToolNotFound, "no registrator configured")
	}

	fixedHash, err := cache.HashFile(opts.Atlas)
	if err != nil {
		return tools.Transform{}, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "atlas volume %s", opts.Atlas)
	}
	movingHash, err := cache.HashFile(opts.Anat)
	if err != nil {
		return tools.Transform{}, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "anat volume %s", opts.Anat)
	}
	key := r.Keyer.TransformKey(fixedHash, movingHash, cache.TransformKeyOpts{Tool: "ants"})

	t := tools.Transform{
		AffinePath:      opts.workPath("xfm_0GenericAffine.mat"),
		WarpPath:        opts.workPath("xfm_1Warp.nii.gz"),
		InverseWarpPath: opts.workPath("xfm_1InverseWarp.nii.gz"),
	}

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var bundle transformBundle
			if err := json.Unmarshal(data, &bundle); err == nil {
				if r.writeBundle(bundle, t) == nil {
					observability.Cache().OnCacheHit(ctx, "transform")
					return t, true, nil
				}
			}
		}
		observability.Cache().OnCacheMiss(ctx, "transform")
	}

	t, err = r.Tools.Registrator.Register(ctx, opts.Atlas, opts.Anat, opts.workPath("xfm_"))
	if err != nil {
		return tools.Transform{}, false, err
	}

	if bundle, err := r.readBundle(t); err == nil {
		if data, err := json.Marshal(bundle); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLTransform)
			observability.Cache().OnCacheSet(ctx, "transform", len(data))
		}
	}
	return t, false, nil
}

func (r *Runner) readBundle(t tools.Transform) (transformBundle, error) {
	var bundle transformBundle
	var err error
	if bundle.Affine, err = os.ReadFile(t.AffinePath); err != nil {
		return bundle, err
	}
	if t.WarpPath != "" {
		if bundle.Warp, err = os.ReadFile(t.WarpPath); err != nil {
			return bundle, err
		}
	}
	bundle.InverseWarp, err = os.ReadFile(t.InverseWarpPath)
	return bundle, err
}

func (r *Runner) writeBundle(bundle transformBundle, t tools.Transform) error {
	if err := os.WriteFile(t.AffinePath, bundle.Affine, 0644); err != nil {
		return err
	}
	if len(bundle.Warp) > 0 {
		if err := os.WriteFile(t.WarpPath, bundle.Warp, 0644); err != nil {
			return err
		}
	}
	return os.WriteFile(t.InverseWarpPath, bundle.InverseWarp, 0644)
}

func (r *Runner) stageWarp(ctx context.Context, runID string, t tools.Transform, checkerPath string, opts Options) (string, bool, error) {
	observability.Stage().OnStageStart(ctx, runID, StageWarp)
	start := time.Now()

	path, hit, err := r.warp(ctx, t, checkerPath, opts)

	observability.Stage().OnStageComplete(ctx, runID, StageWarp, time.Since(start), err)
	return path, hit, err
}

func (r *Runner) warp(ctx context.Context, t tools.Transform, checkerPath string, opts Options) (string, bool, error) {
	if r.Tools.Registrator == nil {
		return "", false, errors.New(errors.ErrCodeToolNotFound, "no registrator configured")
	}

	checkerHash, err := cache.HashFile(checkerPath)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "checkerboard volume %s", checkerPath)
	}
	warpHash, err := cache.HashFile(t.InverseWarpPath)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "inverse warp %s", t.InverseWarpPath)
	}
	key := r.Keyer.WarpKey(checkerHash, warpHash)
	out := opts.outPath("checkerboard_deformed.nii.gz")

	if hit, err := r.restore(ctx, key, out, opts.Refresh); err == nil && hit {
		return out, true, nil
	}

	if err := r.Tools.Registrator.ApplyInverse(ctx, t, checkerPath, opts.Anat, out); err != nil {
		return "", false, err
	}

	r.store(ctx, key, out, cache.TTLVolume)
	return out, false, nil
}

func (r *Runner) stageSurface(ctx context.Context, runID, label, deformed string, opts Options) (string, bool, error) {
	observability.Stage().OnStageStart(ctx, runID, StageSurface)
	start := time.Now()

	path, hit, err := r.surface(ctx, label, deformed, opts)

	observability.Stage().OnStageComplete(ctx, runID, StageSurface, time.Since(start), err)
	return path, hit, err
}

func (r *Runner) surface(ctx context.Context, label, deformed string, opts Options) (string, bool, error) {
	if r.Tools.Mesher == nil {
		return "", false, errors.New(errors.ErrCodeToolNotFound, "no mesher configured")
	}

	labelHash, err := cache.HashFile(label)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "label volume %s", label)
	}
	deformedHash, err := cache.HashFile(deformed)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFileNotFound, err, "deformed volume %s", deformed)
	}
	key := r.Keyer.SurfaceKey(labelHash, deformedHash)
	out := opts.outPath("surface.vtk")

	if hit, err := r.restore(ctx, key, out, opts.Refresh); err == nil && hit {
		return out, true, nil
	}

	if err := r.Tools.Mesher.Mesh(ctx, label, deformed, out); err != nil {
		return "", false, err
	}

	r.store(ctx, key, out, cache.TTLSurface)
	return out, false, nil
}

// =============================================================================
// Cache Helpers
// =============================================================================

// restore fetches a cached artifact and writes it to path. It returns false
// on any miss or error; stages then recompute.
func (r *Runner) restore(ctx context.Context, key, path string, refresh bool) (bool, error) {
	if refresh {
		return false, nil
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	observability.Cache().OnCacheHit(ctx, keyType(key))
	return true, nil
}

// store caches the artifact at path. Cache write failures are ignored; the
// pipeline result is already on disk.
func (r *Runner) store(ctx context.Context, key, path string, ttl time.Duration) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = r.Cache.Set(ctx, key, data, ttl)
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
}

// keyType extracts the type prefix from a cache key for hook reporting.
func keyType(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tbruckner/warpviz/pkg/cache"
	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/tools"
	"github.com/tbruckner/warpviz/pkg/volume"
)

// =============================================================================
// Fake Tools
// =============================================================================

// fakeSegmenter writes a small label volume instead of invoking FSL.
type fakeSegmenter struct {
	calls int
}

func (s *fakeSegmenter) Segment(ctx context.Context, anat, outPrefix string) (string, error) {
	s.calls++
	out := outPrefix + "_seg.nii.gz"
	v, err := volume.New(8, 8, 8)
	if err != nil {
		return "", err
	}
	for z := 0; z < 8; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				v.SetAt(x, y, z, 1)
			}
		}
	}
	return out, v.Save(out)
}

// fakeRegistrator writes stub transform files and copies volumes on warp.
type fakeRegistrator struct {
	registerCalls int
	applyCalls    int
	failApply     bool
}

func (r *fakeRegistrator) Register(ctx context.Context, fixed, moving, outPrefix string) (tools.Transform, error) {
	r.registerCalls++
	t := tools.Transform{
		AffinePath:      outPrefix + "0GenericAffine.mat",
		WarpPath:        outPrefix + "1Warp.nii.gz",
		InverseWarpPath: outPrefix + "1InverseWarp.nii.gz",
	}
	for _, p := range []string{t.AffinePath, t.WarpPath, t.InverseWarpPath} {
		if err := os.WriteFile(p, []byte("transform:"+filepath.Base(p)), 0644); err != nil {
			return tools.Transform{}, err
		}
	}
	return t, nil
}

func (r *fakeRegistrator) ApplyInverse(ctx context.Context, t tools.Transform, input, reference, output string) error {
	r.applyCalls++
	if r.failApply {
		return errors.New(errors.ErrCodeToolFailed, "antsApplyTransforms exited with status 1")
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	return os.WriteFile(output, data, 0644)
}

// fakeMesher writes a stub mesh file.
type fakeMesher struct {
	calls int
}

func (m *fakeMesher) Mesh(ctx context.Context, label, deformed, output string) error {
	m.calls++
	return os.WriteFile(output, []byte("# vtk DataFile Version 3.0\n"), 0644)
}

func testToolchain() (tools.Toolchain, *fakeSegmenter, *fakeRegistrator, *fakeMesher) {
	seg := &fakeSegmenter{}
	reg := &fakeRegistrator{}
	mesh := &fakeMesher{}
	return tools.Toolchain{Segmenter: seg, Registrator: reg, Mesher: mesh}, seg, reg, mesh
}

func writeTestVolume(t *testing.T, path string) {
	t.Helper()
	v, err := volume.New(8, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	for z := 0; z < 8; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				v.SetAt(x, y, z, float32(x+y+z))
			}
		}
	}
	if err := v.Save(path); err != nil {
		t.Fatalf("save test volume: %v", err)
	}
}

func testOptions(t *testing.T, dir string) Options {
	t.Helper()
	anat := filepath.Join(dir, "anat.nii.gz")
	atlas := filepath.Join(dir, "atlas.nii.gz")
	writeTestVolume(t, anat)
	writeTestVolume(t, atlas)
	return Options{
		Anat:    anat,
		Atlas:   atlas,
		WorkDir: filepath.Join(dir, "work"),
		OutDir:  filepath.Join(dir, "out"),
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestExecuteRunsAllStages(t *testing.T) {
	tc, seg, reg, mesh := testToolchain()
	runner := NewRunner(cache.NewNullCache(), nil, nil, tc)

	result, err := runner.Execute(context.Background(), testOptions(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should not be empty")
	}
	if seg.calls != 1 {
		t.Errorf("segmenter calls = %d, want 1", seg.calls)
	}
	if reg.registerCalls != 1 {
		t.Errorf("register calls = %d, want 1", reg.registerCalls)
	}
	if reg.applyCalls != 1 {
		t.Errorf("apply calls = %d, want 1", reg.applyCalls)
	}
	if mesh.calls != 1 {
		t.Errorf("mesher calls = %d, want 1", mesh.calls)
	}

	// Every artifact path must exist on disk.
	for name, path := range map[string]string{
		"label":    result.LabelPath,
		"checker":  result.CheckerPath,
		"colormap": result.ColormapPath,
		"deformed": result.DeformedPath,
		"surface":  result.SurfacePath,
	} {
		if path == "" {
			t.Errorf("%s path is empty", name)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s artifact missing: %v", name, err)
		}
	}
}

func TestExecuteSkipsSegmentWithLabel(t *testing.T) {
	dir := t.TempDir()
	tc, seg, _, _ := testToolchain()
	runner := NewRunner(cache.NewNullCache(), nil, nil, tc)

	opts := testOptions(t, dir)
	opts.Label = filepath.Join(dir, "label.nii.gz")
	writeTestVolume(t, opts.Label)

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if seg.calls != 0 {
		t.Errorf("segmenter calls = %d, want 0 with precomputed label", seg.calls)
	}
	if result.LabelPath != opts.Label {
		t.Errorf("LabelPath = %q, want %q", result.LabelPath, opts.Label)
	}
}

func TestExecuteSkipsRegisterWithTransform(t *testing.T) {
	dir := t.TempDir()
	tc, _, reg, _ := testToolchain()
	runner := NewRunner(cache.NewNullCache(), nil, nil, tc)

	opts := testOptions(t, dir)
	opts.Atlas = ""
	opts.Affine = filepath.Join(dir, "affine.mat")
	opts.InverseWarp = filepath.Join(dir, "inverse.nii.gz")
	if err := os.WriteFile(opts.Affine, []byte("affine"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(opts.InverseWarp, []byte("warp"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if reg.registerCalls != 0 {
		t.Errorf("register calls = %d, want 0 with precomputed transform", reg.registerCalls)
	}
	if result.Transform.InverseWarpPath != opts.InverseWarp {
		t.Errorf("Transform.InverseWarpPath = %q, want %q",
			result.Transform.InverseWarpPath, opts.InverseWarp)
	}
}

func TestExecuteCachesStages(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()

	tc, seg, reg, mesh := testToolchain()
	runner := NewRunner(fc, nil, nil, tc)
	opts := testOptions(t, dir)

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.CheckerHit {
		t.Error("first run should not hit the checker cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	info := second.CacheInfo
	if !info.SegmentHit || !info.CheckerHit || !info.ColormapHit ||
		!info.RegisterHit || !info.WarpHit || !info.SurfaceHit {
		t.Errorf("second run cache info = %+v, want all hits", info)
	}
	if seg.calls != 1 || reg.registerCalls != 1 || reg.applyCalls != 1 || mesh.calls != 1 {
		t.Errorf("tools re-invoked on cached run: seg=%d reg=%d apply=%d mesh=%d",
			seg.calls, reg.registerCalls, reg.applyCalls, mesh.calls)
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()

	tc, seg, _, _ := testToolchain()
	runner := NewRunner(fc, nil, nil, tc)
	opts := testOptions(t, dir)

	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	opts.Refresh = true
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if second.CacheInfo.SegmentHit || second.CacheInfo.CheckerHit {
		t.Errorf("refresh run cache info = %+v, want no hits", second.CacheInfo)
	}
	if seg.calls != 2 {
		t.Errorf("segmenter calls = %d, want 2 with refresh", seg.calls)
	}
}

func TestExecuteHaltsOnToolFailure(t *testing.T) {
	tc, _, reg, mesh := testToolchain()
	reg.failApply = true
	runner := NewRunner(cache.NewNullCache(), nil, nil, tc)

	_, err := runner.Execute(context.Background(), testOptions(t, t.TempDir()))
	if err == nil {
		t.Fatal("Execute() should fail when warp fails")
	}
	if !errors.Is(err, errors.ErrCodeToolFailed) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeToolFailed)
	}
	if mesh.calls != 0 {
		t.Errorf("mesher calls = %d, want 0 after warp failure", mesh.calls)
	}
}

func TestExecuteValidatesOptions(t *testing.T) {
	tc, _, _, _ := testToolchain()
	runner := NewRunner(cache.NewNullCache(), nil, nil, tc)

	_, err := runner.Execute(context.Background(), Options{})
	if err == nil {
		t.Fatal("Execute() should fail without inputs")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}

func TestExecuteMissingToolchain(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, nil, tools.Toolchain{})

	_, err := runner.Execute(context.Background(), testOptions(t, t.TempDir()))
	if err == nil {
		t.Fatal("Execute() should fail without a segmenter")
	}
	if !errors.Is(err, errors.ErrCodeToolNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeToolNotFound)
	}
}

func TestGraphOrderAndDeps(t *testing.T) {
	nodes := Graph()
	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		order[n.Name] = i
	}
	for _, n := range nodes {
		for _, dep := range n.Deps {
			di, ok := order[dep]
			if !ok {
				t.Errorf("stage %s depends on unknown stage %s", n.Name, dep)
				continue
			}
			if di >= order[n.Name] {
				t.Errorf("stage %s listed before its dependency %s", n.Name, dep)
			}
		}
	}
	if len(StageNames()) != len(nodes) {
		t.Errorf("StageNames() length = %d, want %d", len(StageNames()), len(nodes))
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	content := `atlas: mni152.nii.gz
subjects:
  - id: sub-01
    anat: sub-01_T1w.nii.gz
  - id: sub-02
    anat: sub-02_T1w.nii.gz
    label: sub-02_seg.nii.gz
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Atlas != "mni152.nii.gz" {
		t.Errorf("Atlas = %q", m.Atlas)
	}
	if len(m.Subjects) != 2 {
		t.Fatalf("Subjects = %d, want 2", len(m.Subjects))
	}
	if m.Subjects[1].Label != "sub-02_seg.nii.gz" {
		t.Errorf("subject label = %q", m.Subjects[1].Label)
	}

	opts := m.Options(m.Subjects[0], Options{WorkDir: "work", OutDir: "out"})
	if opts.Atlas != m.Atlas || opts.Anat != "sub-01_T1w.nii.gz" {
		t.Errorf("Options() = %+v", opts)
	}
	if opts.WorkDir != filepath.Join("work", "sub-01") {
		t.Errorf("WorkDir = %q", opts.WorkDir)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"missing atlas", "subjects:\n  - id: a\n    anat: a.nii.gz\n", errors.ErrCodeInvalidInput},
		{"no subjects", "atlas: mni.nii.gz\n", errors.ErrCodeInvalidInput},
		{"missing id", "atlas: mni.nii.gz\nsubjects:\n  - anat: a.nii.gz\n", errors.ErrCodeInvalidInput},
		{"missing anat", "atlas: mni.nii.gz\nsubjects:\n  - id: a\n", errors.ErrCodeInvalidInput},
		{"duplicate id", "atlas: mni.nii.gz\nsubjects:\n  - id: a\n    anat: a.nii.gz\n  - id: a\n    anat: b.nii.gz\n", errors.ErrCodeInvalidInput},
		{"malformed yaml", "atlas: [unclosed\n", errors.ErrCodeDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "m.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadManifest(path)
			if err == nil {
				t.Fatal("LoadManifest() should fail")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}

	if _, err := LoadManifest(filepath.Join(dir, "nope.yaml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}

package pipeline

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// Subject describes one entry of a batch manifest.
type Subject struct {
	ID    string `yaml:"id"`
	Anat  string `yaml:"anat"`
	Label string `yaml:"label,omitempty"`
}

// Manifest describes a batch of subjects to process against one atlas.
// Manifests are YAML files:
//
//	atlas: mni152.nii.gz
//	subjects:
//	  - id: sub-01
//	    anat: sub-01/anat/sub-01_T1w.nii.gz
//	  - id: sub-02
//	    anat: sub-02/anat/sub-02_T1w.nii.gz
//	    label: sub-02/anat/sub-02_seg.nii.gz
type Manifest struct {
	Atlas    string    `yaml:"atlas"`
	Subjects []Subject `yaml:"subjects"`
}

// LoadManifest reads and validates a batch manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "parse manifest %s", path)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for required fields and duplicate IDs.
func (m *Manifest) Validate() error {
	if m.Atlas == "" {
		return errors.New(errors.ErrCodeInvalidInput, "manifest: atlas is required")
	}
	if len(m.Subjects) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "manifest: at least one subject is required")
	}
	seen := make(map[string]bool, len(m.Subjects))
	for i, s := range m.Subjects {
		if s.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "manifest: subject %d has no id", i)
		}
		if s.Anat == "" {
			return errors.New(errors.ErrCodeInvalidInput, "manifest: subject %s has no anat volume", s.ID)
		}
		if seen[s.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "manifest: duplicate subject id %s", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Options builds per-subject pipeline options from the manifest entry,
// inheriting checkerboard and colormap settings from base.
func (m *Manifest) Options(s Subject, base Options) Options {
	opts := base
	opts.Anat = s.Anat
	opts.Atlas = m.Atlas
	opts.Label = s.Label
	opts.WorkDir = base.workPath(s.ID)
	opts.OutDir = base.outPath(s.ID)
	opts.validated = false
	return opts
}

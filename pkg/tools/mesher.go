package tools

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// ExecMesher implements Mesher by invoking a configured surface-converter
// binary. The converter is expected to take the label volume, the deformed
// checkerboard volume, and the output mesh path as positional arguments and
// produce a VTK polydata file with per-vertex scalars.
type ExecMesher struct {
	// Bin is the converter binary. Required.
	Bin string

	// ExtraArgs are prepended before the positional arguments, for
	// converter-specific tuning.
	ExtraArgs []string

	Logger *log.Logger
}

// NewExecMesher creates a mesher backed by an external converter binary.
func NewExecMesher(bin string, logger *log.Logger) *ExecMesher {
	return &ExecMesher{Bin: bin, Logger: logger}
}

// Mesh runs the converter.
func (m *ExecMesher) Mesh(ctx context.Context, label, deformed, output string) error {
	if m.Bin == "" {
		return errors.New(errors.ErrCodeToolNotFound, "no surface converter configured (set tools.mesher in the config file)")
	}
	args := append(append([]string{}, m.ExtraArgs...), label, deformed, output)
	return run(ctx, m.Logger, m.Bin, args...)
}

// Ensure ExecMesher implements Mesher.
var _ Mesher = (*ExecMesher)(nil)

// Package pkg provides the core libraries for warpviz deformation visualization.
//
// # Overview
//
// Warpviz makes nonlinear registration deformations visible: a regular
// checkerboard is painted into a subject's segmented brain, pulled through the
// atlas-to-subject inverse warp, and draped over the cortical surface. Where
// the checkerboard bends, the registration deformed. The pkg directory is
// organized into these areas:
//
//  1. [volume] - 3D volume model, NIfTI input/output, statistics
//  2. [checker] - checkerboard pattern generation
//  3. [colormap] - CIELAB color lookup tables
//  4. [tools] - external tool wrappers (ANTs, FSL, mesher)
//  5. [pipeline] - orchestration (segment → checker → register → warp → surface)
//  6. [cache] - content-hash artifact caching (file, redis)
//
// # Architecture
//
// The typical data flow through warpviz:
//
//	Anatomical Volume (NIfTI)
//	         ↓
//	    [tools] FSL (skull-strip + segment)
//	         ↓
//	    [checker] package (paint the pattern)
//	         ↓
//	    [tools] ANTs (register, inverse warp)
//	         ↓
//	    [tools] mesher (colored surface)
//	         ↓
//	    surface mesh + [colormap] color table
//
// # Quick Start
//
// Generate a checkerboard from a label volume:
//
//	import (
//	    "github.com/tbruckner/warpviz/pkg/checker"
//	    "github.com/tbruckner/warpviz/pkg/volume"
//	)
//
//	label, _ := volume.Load("sub-01_seg.nii.gz")
//	board, _ := checker.Generate(label, checker.Options{
//	    GridSize: 10,
//	    Axis:     volume.Axial,
//	    Mode:     checker.ModeBinary,
//	})
//	_ = board.Save("checkerboard.nii.gz")
//
// Or run the complete pipeline through [pipeline.Runner], which the CLI and
// the HTTP API both build on.
package pkg

package volume

import (
	"os"
	"strings"

	"github.com/KyungWonPark/nifti"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// Load reads a NIfTI volume from disk. Only the first timepoint is read; the
// pipeline operates on 3D anatomical and label volumes.
func Load(path string) (*Volume, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "volume %s", path)
	}

	var img nifti.Nifti1Image
	img.LoadImage(path, true)

	dims := img.GetDims()
	nx, ny, nz := dims[0], dims[1], dims[2]
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, errors.New(errors.ErrCodeDecode, "volume %s has invalid dimensions %dx%dx%d", path, nx, ny, nz)
	}

	v, err := New(nx, ny, nz)
	if err != nil {
		return nil, err
	}
	v.refPath = path

	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				v.SetAt(x, y, z, img.GetAt(uint32(x), uint32(y), uint32(z), 0))
			}
		}
	}
	return v, nil
}

// Save writes the volume to a NIfTI file. When the volume (or an ancestor
// created via Like) was loaded from disk, the original header is reused so
// the output shares the subject's grid, orientation and voxel spacing.
func (v *Volume) Save(path string) error {
	img := nifti.NewImg(v.nx, v.ny, v.nz, 1)

	if v.refPath != "" {
		var header nifti.Nifti1Header
		header.LoadHeader(v.refPath)
		img.SetNewHeader(header)
		img.SetHeaderDim(v.nx, v.ny, v.nz, 1)
	}

	for z := 0; z < v.nz; z++ {
		for y := 0; y < v.ny; y++ {
			for x := 0; x < v.nx; x++ {
				img.SetAt(uint32(x), uint32(y), uint32(z), 0, v.At(x, y, z))
			}
		}
	}

	// The library appends ".gz" to the filename it writes, so strip the
	// suffix to land the file exactly at path.
	img.Save(strings.TrimSuffix(path, ".gz"))
	return nil
}

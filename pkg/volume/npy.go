package volume

import (
	"github.com/kshedden/gonpy"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// WriteNpy exports the volume as a NumPy .npy file for quick inspection in
// Python. The array is written with shape (nz, ny, nx) in C order so that
// numpy indexing arr[z, y, x] matches Volume.At(x, y, z).
func (v *Volume) WriteNpy(path string) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "open npy file %s", path)
	}
	w.Shape = []int{v.nz, v.ny, v.nx}
	w.Version = 2
	if err := w.WriteFloat32(v.data); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "write npy file %s", path)
	}
	return nil
}

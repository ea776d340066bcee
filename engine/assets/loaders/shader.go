package loaders

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

const spirvMagic uint32 = 0x07230203

type ShaderLoader struct{}

// Load reads a SPIR-V binary. The bytes are passed to the driver untouched;
// only the word alignment and the magic number are checked.
func (sl *ShaderLoader) Load(path string) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading shader %s", path)
	}
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Newf("shader %s: %d bytes is not a whole number of words", path, len(data))
	}
	if binary.LittleEndian.Uint32(data) != spirvMagic {
		return nil, errors.Newf("shader %s is not SPIR-V", path)
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     metadata.ResourceTypeShader,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}

func (sl *ShaderLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	return nil
}

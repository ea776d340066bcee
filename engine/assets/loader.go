package assets

import "github.com/spaghettifunk/vkscene/engine/renderer/metadata"

type Loader interface {
	// Load reads the file at path. Resource.Data holds the loader specific result.
	Load(path string) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}

package metadata

type ResourceType int

/** @brief Resource types found under the asset directory. */
const (
	/** @brief Anything the engine does not load. */
	ResourceTypeNone ResourceType = iota
	/** @brief SPIR-V shader bytecode. */
	ResourceTypeShader
	/** @brief Decodable image used as a texture. */
	ResourceTypeImage
	/** @brief Wavefront OBJ model (collection of meshes). */
	ResourceTypeModel
	/** @brief Wavefront material library, read alongside its model. */
	ResourceTypeMaterial
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeModel:
		return "model"
	case ResourceTypeMaterial:
		return "material"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource, its base file name. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data: []byte, *TextureData or []*MeshData. */
	Data interface{}
}

/** @brief Everything the renderer needs to draw one load of the asset directory. */
type Scene struct {
	Meshes   []*MeshData
	Textures []*TextureData
}

package loaders

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

// ModelLoader reads Wavefront OBJ files. Each object becomes one mesh.
type ModelLoader struct {
	// DefaultTexture is used by meshes whose material has no diffuse map.
	DefaultTexture string
}

type vertexKey struct {
	position int
	uv       int
}

func (ml *ModelLoader) Load(path string) (*metadata.Resource, error) {
	decoder, err := obj.Decode(path, "")
	if err != nil {
		return nil, errors.Wrapf(err, "decoding model %s", path)
	}

	meshes, err := ml.buildMeshes(filepath.Base(path), decoder)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		Type:     metadata.ResourceTypeModel,
		DataSize: uint64(len(meshes)),
		Data:     meshes,
	}, nil
}

func (ml *ModelLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	return nil
}

func (ml *ModelLoader) buildMeshes(name string, decoder *obj.Decoder) ([]*metadata.MeshData, error) {
	meshes := make([]*metadata.MeshData, 0, len(decoder.Objects))
	for i := range decoder.Objects {
		object := &decoder.Objects[i]
		mesh := &metadata.MeshData{
			Name:        name + "/" + object.Name,
			TextureName: ml.textureFor(decoder, object),
		}

		unique := make(map[vertexKey]uint32)
		for _, face := range object.Faces {
			// Faces are fans; split them into triangles.
			for j := 2; j < len(face.Vertices); j++ {
				for _, corner := range [3]int{0, j - 1, j} {
					if err := addVertex(decoder, mesh, unique, face, corner); err != nil {
						return nil, err
					}
				}
			}
		}
		if len(mesh.Indices) == 0 {
			continue
		}
		meshes = append(meshes, mesh)
	}
	if len(meshes) == 0 {
		return nil, errors.New("no triangles")
	}
	return meshes, nil
}

func addVertex(decoder *obj.Decoder, mesh *metadata.MeshData, unique map[vertexKey]uint32, face obj.Face, corner int) error {
	key := vertexKey{position: face.Vertices[corner], uv: -1}
	if corner < len(face.Uvs) {
		key.uv = face.Uvs[corner]
	}
	if index, ok := unique[key]; ok {
		mesh.Indices = append(mesh.Indices, index)
		return nil
	}

	p := key.position * 3
	if p < 0 || p+2 >= len(decoder.Vertices) {
		return errors.Newf("face references missing vertex %d", key.position)
	}
	vertex := metadata.Vertex{
		Pos:   mgl32.Vec3{decoder.Vertices[p], decoder.Vertices[p+1], decoder.Vertices[p+2]},
		Color: mgl32.Vec3{1, 1, 1},
	}
	if uv := key.uv * 2; key.uv >= 0 && uv+1 < len(decoder.Uvs) {
		vertex.TexCoord = mgl32.Vec2{decoder.Uvs[uv], 1 - decoder.Uvs[uv+1]}
	}

	index := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, vertex)
	mesh.Indices = append(mesh.Indices, index)
	unique[key] = index
	return nil
}

// textureFor returns the diffuse map of the object's first material, or the
// default texture.
func (ml *ModelLoader) textureFor(decoder *obj.Decoder, object *obj.Object) string {
	for _, face := range object.Faces {
		if face.Material == "" {
			continue
		}
		if material, ok := decoder.Materials[face.Material]; ok && strings.TrimSpace(material.MapKd) != "" {
			return filepath.Base(strings.TrimSpace(material.MapKd))
		}
		break
	}
	return ml.DefaultTexture
}

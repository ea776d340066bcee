package assets

import (
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
)

const quadOBJ = `mtllib quad.mtl
o quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl brick
f 1/1 2/2 3/3 4/4
`

const quadMTL = `newmtl brick
Kd 1 1 1
map_Kd textures/brick.png
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func spirv(words int) []byte {
	data := make([]byte, words*4)
	binary.LittleEndian.PutUint32(data, 0x07230203)
	return data
}

func newAssetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	rgba := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range rgba.Pix {
		rgba.Pix[i] = 0x80
	}
	writePNG(t, filepath.Join(dir, "textures", "brick.png"), rgba)

	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(1, 1, color.Gray{Y: 200})
	writePNG(t, filepath.Join(dir, "textures", "mask.png"), gray)

	writeFile(t, filepath.Join(dir, "models", "quad.obj"), []byte(quadOBJ))
	writeFile(t, filepath.Join(dir, "models", "quad.mtl"), []byte(quadMTL))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))
	return dir
}

func newManager(t *testing.T, dir string, watch bool) *AssetManager {
	t.Helper()
	am := NewAssetManager(dir)
	if err := am.Initialize(metadata.DEFAULT_TEXTURE_NAME, watch); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { am.Shutdown() })
	return am
}

func TestDetermineAssetType(t *testing.T) {
	tests := []struct {
		path string
		want metadata.ResourceType
	}{
		{"shaders/vert.spv", metadata.ResourceTypeShader},
		{"a/b/photo.JPG", metadata.ResourceTypeImage},
		{"brick.png", metadata.ResourceTypeImage},
		{"x.webp", metadata.ResourceTypeImage},
		{"models/room.obj", metadata.ResourceTypeModel},
		{"models/room.mtl", metadata.ResourceTypeMaterial},
		{"README", metadata.ResourceTypeNone},
		{"notes.txt", metadata.ResourceTypeNone},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := determineAssetType(tt.path); got != tt.want {
				t.Errorf("determineAssetType(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestIndexSkipsUnknownFiles(t *testing.T) {
	dir := newAssetDir(t)
	am := newManager(t, dir, false)

	if got := len(am.Assets(metadata.ResourceTypeImage)); got != 2 {
		t.Errorf("images = %d, want 2", got)
	}
	if got := len(am.Assets(metadata.ResourceTypeModel)); got != 1 {
		t.Errorf("models = %d, want 1", got)
	}
	if got := len(am.Assets(metadata.ResourceTypeNone)); got != 0 {
		t.Errorf("unknown files indexed: %d", got)
	}
}

func TestLoadScene(t *testing.T) {
	dir := newAssetDir(t)
	am := newManager(t, dir, false)

	scene, err := am.LoadScene(context.Background())
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}

	if len(scene.Textures) != 1 {
		t.Fatalf("textures = %d, want 1 (gray image skipped)", len(scene.Textures))
	}
	tex := scene.Textures[0]
	if tex.Name != "brick.png" || tex.Channels != 4 || tex.Width != 2 || tex.Height != 2 {
		t.Errorf("texture = %s %dx%dx%d", tex.Name, tex.Width, tex.Height, tex.Channels)
	}

	if len(scene.Meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(scene.Meshes))
	}
	mesh := scene.Meshes[0]
	if mesh.TextureName != "brick.png" {
		t.Errorf("TextureName = %q, want brick.png", mesh.TextureName)
	}
	if len(mesh.Vertices) != 4 || len(mesh.Indices) != 6 {
		t.Errorf("mesh has %d vertices and %d indices, want 4 and 6", len(mesh.Vertices), len(mesh.Indices))
	}
}

func TestLoadSceneFailsOnCorruptImage(t *testing.T) {
	dir := newAssetDir(t)
	writeFile(t, filepath.Join(dir, "textures", "broken.png"), []byte("not a png"))
	am := newManager(t, dir, false)

	if _, err := am.LoadScene(context.Background()); err == nil {
		t.Fatal("expected an error for a corrupt image")
	}
}

func TestLoadShader(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "vert.spv")
	writeFile(t, good, spirv(5))
	badMagic := filepath.Join(dir, "bad.spv")
	writeFile(t, badMagic, make([]byte, 8))
	unaligned := filepath.Join(dir, "short.spv")
	writeFile(t, unaligned, spirv(2)[:6])

	am := newManager(t, dir, false)

	code, err := am.LoadShader(good)
	if err != nil {
		t.Fatalf("LoadShader: %v", err)
	}
	if len(code) != 20 {
		t.Errorf("len(code) = %d, want 20", len(code))
	}

	for _, path := range []string{badMagic, unaligned, filepath.Join(dir, "missing.spv")} {
		if _, err := am.LoadShader(path); err == nil {
			t.Errorf("LoadShader(%s) succeeded", filepath.Base(path))
		}
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := newAssetDir(t)
	am := newManager(t, dir, true)

	added := filepath.Join(dir, "textures", "new.png")
	writePNG(t, added, image.NewNRGBA(image.Rect(0, 0, 1, 1)))

	select {
	case <-am.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(am.Assets(metadata.ResourceTypeImage)) != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("images = %d, want 3", len(am.Assets(metadata.ResourceTypeImage)))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	am := newManager(t, t.TempDir(), true)
	if err := am.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := am.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

package assets

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vkscene/engine/assets/loaders"
	"github.com/spaghettifunk/vkscene/engine/core"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	"golang.org/x/sync/errgroup"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the asset directory, loads scenes from it and, when
// watching, reports changes so the render thread can reload.
type AssetManager struct {
	dir     string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan string
}

func NewAssetManager(dir string) *AssetManager {
	return &AssetManager{
		dir:     dir,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		changes: make(chan string, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Initialize registers the loaders, indexes the asset directory and, if
// watch is set, starts following it for changes.
func (am *AssetManager) Initialize(defaultTexture string, watch bool) error {
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{DefaultTexture: defaultTexture})

	if err := am.index(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating asset watcher")
	}
	am.fsnotify = watcher
	if err := am.addRecursive(am.dir); err != nil {
		watcher.Close()
		return err
	}
	go am.start()
	return nil
}

// Changes delivers the path of a changed asset. Bursts of changes coalesce
// into a single pending notification.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	if am.fsnotify != nil {
		<-am.stopped
	}
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Assets lists the indexed assets of one type, sorted by path.
func (am *AssetManager) Assets(assetType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	out := make([]AssetInfo, 0)
	for _, info := range am.assets {
		if info.Type == assetType {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LoadAsset loads path with the loader registered for resourceType. The path
// does not have to be inside the asset directory.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType) (*metadata.Resource, error) {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, errors.Newf("no loader registered for %s", resourceType)
	}
	res, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	if info, ok := am.assets[path]; ok {
		info.LastLoaded = time.Now()
		am.assets[path] = info
	}
	am.mutex.Unlock()
	return res, nil
}

// LoadShader returns the bytecode of a SPIR-V file.
func (am *AssetManager) LoadShader(path string) ([]byte, error) {
	res, err := am.LoadAsset(path, metadata.ResourceTypeShader)
	if err != nil {
		return nil, err
	}
	return res.Data.([]byte), nil
}

// LoadScene decodes every image and model in the asset directory. Images are
// decoded concurrently; images with a channel count other than 3 or 4 are
// skipped. Any decode failure fails the whole load.
func (am *AssetManager) LoadScene(ctx context.Context) (*metadata.Scene, error) {
	images := am.Assets(metadata.ResourceTypeImage)
	decoded := make([]*metadata.TextureData, len(images))

	group, ctx := errgroup.WithContext(ctx)
	for i, info := range images {
		i, path := i, info.Path
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := am.LoadAsset(path, metadata.ResourceTypeImage)
			if err != nil {
				return err
			}
			decoded[i] = res.Data.(*metadata.TextureData)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	scene := &metadata.Scene{}
	for _, tex := range decoded {
		if tex.Channels != 3 && tex.Channels != 4 {
			core.LogWarn("Skipping texture '%s': %d channels.", tex.Name, tex.Channels)
			continue
		}
		scene.Textures = append(scene.Textures, tex)
	}

	for _, info := range am.Assets(metadata.ResourceTypeModel) {
		res, err := am.LoadAsset(info.Path, metadata.ResourceTypeModel)
		if err != nil {
			return nil, err
		}
		scene.Meshes = append(scene.Meshes, res.Data.([]*metadata.MeshData)...)
	}
	core.LogInfo("Scene loaded: %d meshes, %d textures.", len(scene.Meshes), len(scene.Textures))
	return scene, nil
}

func (am *AssetManager) index() error {
	err := filepath.WalkDir(am.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			am.handleFileEvent(path)
		}
		return nil
	})
	return errors.Wrapf(err, "indexing assets in %s", am.dir)
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	return filepath.WalkDir(name, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(path)
		}
		return nil
	})
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.addRecursive(e.Name); err != nil {
				core.LogWarn("cannot watch %s: %s", e.Name, err)
			}
			return
		}
	}

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		am.handleFileEvent(e.Name)
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		am.removeAsset(e.Name)
	default:
		return
	}

	if determineAssetType(e.Name) == metadata.ResourceTypeNone {
		return
	}
	select {
	case am.changes <- e.Name:
	default:
	}
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, ok := am.assets[path]
	if !ok {
		info = AssetInfo{Path: path, Type: assetType}
	}
	am.assets[path] = info
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".mtl":
		return metadata.ResourceTypeMaterial
	case ".obj":
		return metadata.ResourceTypeModel
	default:
		return metadata.ResourceTypeNone
	}
}

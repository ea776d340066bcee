//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/target"
)

type Build mg.Namespace

var shaderSources = map[string]string{
	"shaders/shader.vert": "shaders/vert.spv",
	"shaders/shader.frag": "shaders/frag.spv",
}

// Compiles the GLSL shaders to SPIR-V with glslc. Up to date outputs are skipped.
func (Build) Shaders() error {
	for src, dst := range shaderSources {
		stale, err := target.Path(dst, src)
		if err != nil {
			return err
		}
		if !stale {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if _, err := executeCmd("glslc", withArgs(src, "-o", dst), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Builds the vkscene binary into bin/.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/vkscene", "."), withStream())
	return err
}

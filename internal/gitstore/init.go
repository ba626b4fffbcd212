package gitstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// SatelliteDir is the name of the working copy directory inside data_path.
const SatelliteDir = "satellite"

// BarePath returns the bare repository location for a project data path.
func BarePath(dataPath string) string {
	return dataPath + ".git"
}

// SatellitePath returns the satellite's git metadata directory.
func SatellitePath(dataPath string) string {
	return filepath.Join(dataPath, SatelliteDir, git.GitDirName)
}

// InitProject creates the bare repository and the satellite working copy
// for dataPath. The satellite gets an "origin" remote pointing at the bare
// repository. On failure everything created so far is removed.
func InitProject(dataPath string) (err error) {
	if dataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}

	bare := BarePath(dataPath)
	for _, p := range []string{dataPath, bare} {
		if _, statErr := os.Stat(p); statErr == nil {
			return fmt.Errorf("%s already exists", p)
		}
	}

	defer func() {
		if err != nil {
			_ = os.RemoveAll(bare)
			_ = os.RemoveAll(dataPath)
		}
	}()

	if _, err = git.PlainInit(bare, true); err != nil {
		return fmt.Errorf("initializing bare repository %s: %w", bare, err)
	}

	satellite, err := git.PlainInit(filepath.Join(dataPath, SatelliteDir), false)
	if err != nil {
		return fmt.Errorf("initializing satellite repository: %w", err)
	}

	if _, err = satellite.CreateRemote(&config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{bare},
	}); err != nil {
		return fmt.Errorf("configuring satellite remote: %w", err)
	}

	return nil
}

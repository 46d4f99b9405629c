// Copyright 2025 JC-Lab.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rospkg locates ROS data files (.msg, .srv, .action) inside
// package trees on disk. A file belongs to the nearest ancestor
// directory that carries a package.xml manifest; that directory's name
// is the package name.
package rospkg

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
)

var log = logging.Logger("rospkg")

const manifestName = "package.xml"

// File identifies a ROS data file together with the package that owns
// it.
type File struct {
	Package string
	Path    string
}

// FindFiles walks root recursively and returns every file accepted by
// match, resolved to its owning package. A matching file with no
// package.xml in any ancestor directory is an error. Unreadable
// directory entries are logged and skipped.
func FindFiles(root string, match func(path string) bool) ([]File, error) {
	var out []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugf("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !match(path) {
			return nil
		}
		pkg, err := PackageFromPath(path)
		if err != nil {
			return err
		}
		out = append(out, File{Package: pkg, Path: path})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	return out, nil
}

// PackageFromPath walks upward from a data file until a directory
// containing package.xml is found and returns that directory's name.
func PackageFromPath(path string) (string, error) {
	dir := filepath.Dir(path)
	for {
		if _, err := os.Stat(filepath.Join(dir, manifestName)); err == nil {
			return filepath.Base(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Errorf("found ros file %s, but no %s in any ancestor", path, manifestName)
		}
		dir = parent
	}
}

// FindMsgFiles returns every .msg file under root.
func FindMsgFiles(root string) ([]File, error) {
	return FindFiles(root, hasExt(".msg"))
}

// FindSrvFiles returns every .srv file under root.
func FindSrvFiles(root string) ([]File, error) {
	return FindFiles(root, hasExt(".srv"))
}

// FindActionFiles returns every .action file under root.
func FindActionFiles(root string) ([]File, error) {
	return FindFiles(root, hasExt(".action"))
}

func hasExt(ext string) func(string) bool {
	return func(path string) bool {
		return strings.HasSuffix(path, ext)
	}
}

// InstalledMsgFiles returns every message definition reachable through
// the ROS_PACKAGE_PATH environment variable (a list of roots separated
// by the platform's list separator).
func InstalledMsgFiles() ([]File, error) {
	rpp := os.Getenv("ROS_PACKAGE_PATH")
	if rpp == "" {
		return nil, errors.New("ROS_PACKAGE_PATH is not set")
	}
	var out []File
	for _, root := range filepath.SplitList(rpp) {
		if root == "" {
			continue
		}
		files, err := FindMsgFiles(root)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

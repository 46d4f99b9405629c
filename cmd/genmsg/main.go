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

// genmsg discovers ROS message and service definition files and
// generates Go descriptors for them.
//
// Usage:
//
//	genmsg -in /opt/ros/noetic/share -out msgs/msgs.gen.go -pkg msgs
//
// With no -in, the roots are taken from ROS_PACKAGE_PATH.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/robokit/rostcp/msggen"
	"github.com/robokit/rostcp/rospkg"
)

var log = logging.Logger("genmsg")

func main() {
	in := flag.String("in", "", "definition search roots, list-separated (defaults to ROS_PACKAGE_PATH)")
	out := flag.String("out", "", "output path for the generated Go file")
	pkg := flag.String("pkg", "msgs", "package name of the generated file")
	withSrv := flag.Bool("srv", true, "also generate service descriptors")
	flag.Parse()

	if *out == "" {
		log.Fatal("missing -out")
	}
	roots := *in
	if roots == "" {
		roots = os.Getenv("ROS_PACKAGE_PATH")
	}
	if roots == "" {
		log.Fatal("no search roots: pass -in or set ROS_PACKAGE_PATH")
	}

	var files []rospkg.File
	for _, root := range filepath.SplitList(roots) {
		if root == "" {
			continue
		}
		found, err := rospkg.FindFiles(root, func(path string) bool {
			if strings.HasSuffix(path, ".msg") {
				return true
			}
			return *withSrv && strings.HasSuffix(path, ".srv")
		})
		if err != nil {
			log.Fatalf("%+v", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		log.Fatal("no definition files found")
	}
	log.Infof("found %d definition files", len(files))

	if err := msggen.Generate(files, *out, *pkg); err != nil {
		log.Fatalf("%+v", err)
	}
}

// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rundata

import (
	"runtime/debug"
	"strconv"
	"time"

	gitv5 "github.com/go-git/go-git/v5"
	"github.com/golang/glog"
)

// buildInfo records which build of the harness ran.
func buildInfo(m map[string]string) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		glog.Warning("The binary carries no build info.")
		return
	}
	m["build.go_version"] = bi.GoVersion
	m["build.module"] = bi.Main.Path + "@" + bi.Main.Version
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified":
			m["build."+s.Key] = s.Value
		}
	}
}

// gitInfo records the checkout containing dir. Outside a checkout nothing
// is recorded.
func gitInfo(m map[string]string, dir string) {
	repo, err := gitv5.PlainOpenWithOptions(dir, &gitv5.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		glog.V(1).Infof("No git checkout at %s: %v", dir, err)
		return
	}
	checkout(m, repo)
}

// checkout records HEAD, the origin remote and whether the worktree has
// local changes.
func checkout(m map[string]string, repo *gitv5.Repository) {
	head, err := repo.Head()
	if err != nil {
		glog.Warningf("Cannot resolve git HEAD: %v", err)
		return
	}
	m["git.commit"] = head.Hash().String()
	if head.Name().IsBranch() {
		m["git.branch"] = head.Name().Short()
	}
	if c, err := repo.CommitObject(head.Hash()); err == nil {
		m["git.commit_time"] = c.Committer.When.UTC().Format(time.RFC3339)
	}
	if origin, err := repo.Remote("origin"); err == nil && len(origin.Config().URLs) > 0 {
		m["git.origin"] = origin.Config().URLs[0]
	}
	wt, err := repo.Worktree()
	if err != nil {
		return
	}
	st, err := wt.Status()
	if err != nil {
		glog.Warningf("Cannot read git status: %v", err)
		return
	}
	m["git.clean"] = strconv.FormatBool(st.IsClean())
}

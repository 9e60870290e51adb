// Package locator finds optional resource directories by trying an ordered
// list of candidate locations.
package locator

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/logger"
)

// LookupEnv has the signature of os.LookupEnv
type LookupEnv func(key string) (string, bool)

// Candidate produces one directory to try. Path reports ok=false when the
// candidate's precondition does not hold. Trusted candidates are returned
// without checking that the directory exists.
type Candidate struct {
	Name    string
	Path    func(env LookupEnv) (path string, ok bool)
	Trusted bool
}

// EnvCandidate is the directory named by an environment variable. It is
// trusted: if the variable is set its value wins even when it does not
// exist.
func EnvCandidate(variable string) Candidate {
	return Candidate{
		Name:    "env:" + variable,
		Trusted: true,
		Path: func(env LookupEnv) (string, bool) {
			return env(variable)
		},
	}
}

// DirCandidate is an always-available fixed path
func DirCandidate(name, dir string) Candidate {
	return Candidate{
		Name: name,
		Path: func(LookupEnv) (string, bool) { return dir, true },
	}
}

// Locator resolves candidates against a filesystem and environment
type Locator struct {
	fs  afero.Fs
	env LookupEnv
}

// New returns a Locator. Nil arguments select the OS filesystem and
// os.LookupEnv.
func New(fsys afero.Fs, env LookupEnv) *Locator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if env == nil {
		env = os.LookupEnv
	}
	return &Locator{fs: fsys, env: env}
}

// Resolve returns the first candidate path that is available and, unless
// trusted, an existing directory. It returns "" when no candidate matches.
func (l *Locator) Resolve(candidates []Candidate) string {
	for _, c := range candidates {
		path, ok := c.Path(l.env)
		if !ok {
			logger.Debug("Skipping unavailable candidate", "candidate", c.Name)
			continue
		}
		if c.Trusted {
			logger.Debug("Using trusted candidate", "candidate", c.Name, "path", path)
			return path
		}
		if isDir, _ := afero.IsDir(l.fs, path); isDir {
			logger.Debug("Resolved candidate", "candidate", c.Name, "path", path)
			return path
		}
	}
	return ""
}

// ListEntries returns the names of regular files in dir ending in suffix,
// with the suffix stripped. An empty or unreadable dir yields no names.
func (l *Locator) ListEntries(dir, suffix string) []string {
	if dir == "" {
		return nil
	}

	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		logger.Debug("Resource directory not readable", "dir", dir, "error", err)
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		name, ok := strings.CutSuffix(info.Name(), suffix)
		if !ok || name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DictionaryCandidates is the fixed lookup order for spell-check
// dictionaries: the environment override, next to the executable, then the
// shared data directory.
func DictionaryCandidates(exeDir string) []Candidate {
	return []Candidate{
		EnvCandidate(constants.DictionariesEnvVar),
		DirCandidate("executable", filepath.Join(exeDir, constants.DictionariesDirName)),
		DirCandidate("installed", filepath.Join(SharedDataDir(), constants.AppName, constants.DictionariesDirName)),
	}
}

// ExecutableDir is the directory of the running binary, "" if unknown
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// Dictionaries resolves the dictionary directory and lists installed
// dictionary names. dir is "" when none was found.
func (l *Locator) Dictionaries(exeDir string) (dir string, names []string) {
	dir = l.Resolve(DictionaryCandidates(exeDir))
	return dir, l.ListEntries(dir, constants.DictionaryFileSuffix)
}

package dataset

import (
	"fmt"
	"strings"

	"github.com/mind-engage/mathviz/internal/problem"
)

type Mode string

const (
	ModeDirectory Mode = "directory"
	ModeArray     Mode = "array"
)

// File is one array-mode source file.
type File struct {
	Key    string         `yaml:"key" json:"key"`
	Label  string         `yaml:"label" json:"label"`
	Path   string         `yaml:"path" json:"path"`
	Family problem.Family `yaml:"family" json:"family"`
}

// Source describes where a dataset lives. Two equal descriptors always
// produce the same collection, which is what the cache relies on.
type Source struct {
	Mode Mode
	// Root is the directory walked in directory mode.
	Root string
	// Files are read in array mode.
	Files []File
}

// Fingerprint is the cache key for a descriptor.
func (s Source) Fingerprint() string {
	var b strings.Builder
	b.WriteString(string(s.Mode))
	b.WriteByte('|')
	b.WriteString(s.Root)
	for _, f := range s.Files {
		fmt.Fprintf(&b, "|%s=%s:%s", f.Key, f.Family, f.Path)
	}
	return b.String()
}

func (s Source) Validate() error {
	switch s.Mode {
	case ModeDirectory:
		if s.Root == "" {
			return fmt.Errorf("%w: directory source needs a root", problem.ErrValidation)
		}
	case ModeArray:
		if len(s.Files) == 0 {
			return fmt.Errorf("%w: array source needs at least one file", problem.ErrValidation)
		}
		seen := map[string]bool{}
		for _, f := range s.Files {
			if f.Key == "" || f.Path == "" {
				return fmt.Errorf("%w: array file needs key and path", problem.ErrValidation)
			}
			if seen[f.Key] {
				return fmt.Errorf("%w: duplicate file key %q", problem.ErrValidation, f.Key)
			}
			seen[f.Key] = true
			if !f.Family.Valid() || f.Family == problem.FamilyMath {
				return fmt.Errorf("%w: file %q has unsupported family %q", problem.ErrValidation, f.Key, f.Family)
			}
		}
	default:
		return fmt.Errorf("%w: unknown source mode %q", problem.ErrValidation, s.Mode)
	}
	return nil
}

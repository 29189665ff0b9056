package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mind-engage/mathviz/internal/problem"
)

// FileInfo summarises one array-mode file after loading.
type FileInfo struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Keywords string `json:"keywords"`
	Count    int    `json:"count"`
}

// Dataset is the result of one load. Records is never modified after Load
// returns.
type Dataset struct {
	Source   Source
	Records  problem.Collection
	Warnings []problem.Warning
	Files    []FileInfo
	LoadedAt time.Time
}

func (d *Dataset) warn(path string, err error) {
	d.Warnings = append(d.Warnings, problem.Warning{Path: path, Err: err})
}

// Load reads a source into memory. A missing root or source file fails the
// whole load with problem.ErrNotFound; per-file read and parse failures are
// collected as warnings.
func Load(src Source) (*Dataset, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	ds := &Dataset{
		Source:   src,
		Records:  problem.Collection{},
		LoadedAt: time.Now(),
	}
	var err error
	switch src.Mode {
	case ModeDirectory:
		err = loadDirectory(ds, src.Root)
	case ModeArray:
		err = loadArrays(ds, src.Files)
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func loadDirectory(ds *Dataset, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: dataset root %s", problem.ErrNotFound, root)
		}
		return fmt.Errorf("%w: %v", problem.ErrIO, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: dataset root %s is not a directory", problem.ErrNotFound, root)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return fmt.Errorf("%w: %v", problem.ErrIO, err)
			}
			ds.warn(relPath(root, p), fmt.Errorf("%w: %v", problem.ErrIO, err))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel := relPath(root, p)
		data, err := os.ReadFile(p)
		if err != nil {
			ds.warn(rel, fmt.Errorf("%w: %v", problem.ErrIO, err))
			return nil
		}
		rec, err := problem.DecodeMath(problem.PathID(rel), data)
		if err != nil {
			ds.warn(rel, err)
			return nil
		}
		ds.Records[rec.ID()] = rec
		return nil
	})
}

func relPath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

type arrayFile struct {
	Keywords any             `json:"keywords"`
	Example  json.RawMessage `json:"example"`
}

func loadArrays(ds *Dataset, files []File) error {
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: dataset file %s", problem.ErrNotFound, f.Path)
			}
			ds.warn(f.Path, fmt.Errorf("%w: %v", problem.ErrIO, err))
			continue
		}
		var doc arrayFile
		if err := json.Unmarshal(data, &doc); err != nil {
			ds.warn(f.Path, fmt.Errorf("%w: %v", problem.ErrParse, err))
			continue
		}
		if len(doc.Example) == 0 {
			ds.warn(f.Path, fmt.Errorf("%w: missing \"example\" array", problem.ErrParse))
			continue
		}
		elems, err := problem.DecodeElements(doc.Example)
		if err != nil {
			ds.warn(f.Path, err)
			continue
		}

		info := FileInfo{Key: f.Key, Label: f.Label, Keywords: problem.FacetString(doc.Keywords)}
		for i, e := range elems {
			q := problem.NewGaokaoQuestion(f.Key, f.Family, i, e)
			if _, dup := ds.Records[q.ID()]; dup {
				ds.warn(fmt.Sprintf("%s[%d]", f.Path, i),
					fmt.Errorf("%w: duplicate index %d", problem.ErrValidation, q.Index))
				continue
			}
			ds.Records[q.ID()] = q
			info.Count++
		}
		ds.Files = append(ds.Files, info)
	}
	return nil
}

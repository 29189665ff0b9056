package problem

import (
	"cmp"
	"strconv"
	"strings"
)

// ID identifies a record within one loaded dataset. Directory-sourced
// records carry their root-relative path and Index -1; array-sourced
// records carry the source file key and the element index.
type ID struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
}

func PathID(p string) ID { return ID{Path: p, Index: -1} }

func ElementID(fileKey string, index int) ID { return ID{Path: fileKey, Index: index} }

// IsElement reports whether the id points into an array-mode file.
func (id ID) IsElement() bool { return id.Index >= 0 }

func (id ID) String() string {
	if !id.IsElement() {
		return id.Path
	}
	return id.Path + "#" + strconv.Itoa(id.Index)
}

// Compare orders ids by path, then by index.
func (id ID) Compare(o ID) int {
	if c := strings.Compare(id.Path, o.Path); c != 0 {
		return c
	}
	return cmp.Compare(id.Index, o.Index)
}

// ParseID is the inverse of String. A trailing "#<n>" selects an element.
func ParseID(s string) ID {
	if i := strings.LastIndexByte(s, '#'); i > 0 {
		if n, err := strconv.Atoi(s[i+1:]); err == nil && n >= 0 {
			return ElementID(s[:i], n)
		}
	}
	return PathID(s)
}

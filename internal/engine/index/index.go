// Package index keeps the set of class-like declarations known to a scan.
package index

import (
	"annotcheck/internal/engine/parser"
	"annotcheck/internal/shared/observability"
	"sort"
	"strings"
	"sync"
)

type ClassRecord struct {
	FullName string
	Kind     parser.ClassKind
	File     string
	Line     int
}

// ClassIndex answers "does a class, interface, trait or enum with this fully
// qualified name exist". Lookups are case-insensitive and ignore a leading
// '\'. Safe for concurrent use.
type ClassIndex struct {
	mu      sync.RWMutex
	classes map[string][]ClassRecord
	byFile  map[string][]string

	known         map[string]bool
	knownPrefixes []string
}

func New(knownClasses, knownNamespaces []string) *ClassIndex {
	ix := &ClassIndex{
		classes: make(map[string][]ClassRecord),
		byFile:  make(map[string][]string),
		known:   make(map[string]bool, len(knownClasses)),
	}
	for _, name := range knownClasses {
		if key := canonicalName(name); key != "" {
			ix.known[key] = true
		}
	}
	for _, ns := range knownNamespaces {
		if key := canonicalName(ns); key != "" {
			ix.knownPrefixes = append(ix.knownPrefixes, key+`\`)
		}
	}
	sort.Strings(ix.knownPrefixes)
	return ix
}

// ReplaceFile drops every record previously added for path and indexes decls
// in their place.
func (ix *ClassIndex) ReplaceFile(path string, decls []parser.ClassDecl) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeFileLocked(path)
	keys := make([]string, 0, len(decls))
	for _, decl := range decls {
		key := canonicalName(decl.FullName)
		if key == "" {
			continue
		}
		ix.classes[key] = append(ix.classes[key], ClassRecord{
			FullName: decl.FullName,
			Kind:     decl.Kind,
			File:     path,
			Line:     decl.Location.Line,
		})
		keys = append(keys, key)
	}
	if len(keys) > 0 {
		ix.byFile[path] = keys
	}
	observability.IndexedClasses.Set(float64(len(ix.classes)))
}

func (ix *ClassIndex) RemoveFile(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeFileLocked(path)
	observability.IndexedClasses.Set(float64(len(ix.classes)))
}

func (ix *ClassIndex) removeFileLocked(path string) {
	for _, key := range ix.byFile[path] {
		records := ix.classes[key]
		kept := records[:0]
		for _, rec := range records {
			if rec.File != path {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(ix.classes, key)
		} else {
			ix.classes[key] = kept
		}
	}
	delete(ix.byFile, path)
}

// Exists is the class-existence oracle used by inspections.
func (ix *ClassIndex) Exists(fqn string) bool {
	key := canonicalName(fqn)
	if key == "" {
		return false
	}
	if ix.known[key] {
		return true
	}
	for _, prefix := range ix.knownPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.classes[key]) > 0
}

// Lookup returns the declarations indexed for fqn, first by file path.
func (ix *ClassIndex) Lookup(fqn string) []ClassRecord {
	key := canonicalName(fqn)
	ix.mu.RLock()
	records := append([]ClassRecord(nil), ix.classes[key]...)
	ix.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].File != records[j].File {
			return records[i].File < records[j].File
		}
		return records[i].Line < records[j].Line
	})
	return records
}

// Len is the number of distinct indexed names.
func (ix *ClassIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.classes)
}

func canonicalName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, `\`)
	return strings.ToLower(name)
}

/*
Package cache persists constructed LR parse tables.

Building a table is by far the most expensive step of setting up a parser,
so clients may want to do it once and re-use the result across program runs.
This package serializes the ACTION and GOTO tables together with the
conflict log into a versioned binary record and re-loads them.

Two guards protect against stale files: a format version, compared exactly,
and a fingerprint of the grammar the table was built for. On any mismatch
Load returns a *TableMismatchError; callers are expected to delete the file
and rebuild. Semantic actions are code and are not serialized — Load
re-binds them through the grammar supplied by the caller.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cache

import (
	"fmt"
	"os"

	"github.com/cnf/structhash"
	"github.com/dekarrin/rezi"
	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/yalr/lr"
)

// tracer traces with key 'yalr.cache'.
func tracer() tracing.Trace {
	return tracing.Select("yalr.cache")
}

// FormatVersion is the version tag written into table files. Files carrying
// any other tag are rejected on load.
const FormatVersion = "yalr.1"

// TableMismatchError reports a table file which cannot serve the requesting
// grammar: wrong format version, wrong grammar fingerprint, or a corrupt
// record. The file at Path should be removed and the table rebuilt.
type TableMismatchError struct {
	Path   string
	Reason string
}

func (e *TableMismatchError) Error() string {
	return fmt.Sprintf("table file %s cannot be used (%s); remove it and rebuild", e.Path, e.Reason)
}

// Save writes a table to path, tagged with FormatVersion and the fingerprint
// of g.
func Save(path string, g *lr.Grammar, t *lr.Table) error {
	return SaveVersion(path, FormatVersion, g, t)
}

// Load reads a table for grammar g from path.
func Load(path string, g *lr.Grammar) (*lr.Table, error) {
	return LoadVersion(path, FormatVersion, g)
}

// SaveVersion is Save with an explicit version tag.
func SaveVersion(path string, version string, g *lr.Grammar, t *lr.Table) error {
	rec := newTableRecord(version, g, t)
	data := rezi.EncBinary(rec)
	tracer().Debugf("writing table %s: %d states, %d bytes", path, t.StateCount, len(data))
	return os.WriteFile(path, data, 0644)
}

// LoadVersion is Load with an explicit version tag to compare against.
func LoadVersion(path string, version string, g *lr.Grammar) (*lr.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec := &tableRecord{}
	if _, err := rezi.DecBinary(data, rec); err != nil {
		return nil, &TableMismatchError{Path: path, Reason: "corrupt record"}
	}
	if rec.Version != version {
		return nil, &TableMismatchError{
			Path:   path,
			Reason: fmt.Sprintf("version %q, want %q", rec.Version, version),
		}
	}
	if fp := fingerprint(g); rec.Fingerprint != fp {
		return nil, &TableMismatchError{Path: path, Reason: "table was built for a different grammar"}
	}
	tracer().Debugf("loaded table %s: %d states", path, rec.StateCount)
	return rec.table(), nil
}

// fingerprint hashes the shape of a grammar: the ordered rule list with lhs
// and rhs symbols. Precedence and semantic actions do not contribute.
func fingerprint(g *lr.Grammar) string {
	type ruleShape struct {
		LHS string
		RHS []string
	}
	shapes := make([]ruleShape, g.Size())
	for i := 0; i < g.Size(); i++ {
		r := g.Rule(i)
		shape := ruleShape{LHS: string(r.LHS)}
		for _, sym := range r.RHS {
			shape.RHS = append(shape.RHS, string(sym))
		}
		shapes[i] = shape
	}
	hash, err := structhash.Hash(shapes, 1)
	if err != nil { // no reason for this to happen, but API demands it
		panic(err)
	}
	return hash
}

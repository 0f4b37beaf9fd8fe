package cache

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rezi"

	"github.com/npillmayer/yalr/lr"
)

// This file contains the binary record format for table files.

// cellEntry is one ACTION or GOTO cell in serialized form.
type cellEntry struct {
	State int
	Sym   string
	Kind  int // ACTION only
	Arg   int // successor state, rule index, or GOTO target
}

func (c cellEntry) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncInt(c.State)...)
	data = append(data, rezi.EncString(c.Sym)...)
	data = append(data, rezi.EncInt(c.Kind)...)
	data = append(data, rezi.EncInt(c.Arg)...)
	return data, nil
}

func (c *cellEntry) UnmarshalBinary(data []byte) error {
	var n, read int
	var err error
	if c.State, n, err = rezi.DecInt(data); err != nil {
		return err
	}
	read = n
	if c.Sym, n, err = rezi.DecString(data[read:]); err != nil {
		return err
	}
	read += n
	if c.Kind, n, err = rezi.DecInt(data[read:]); err != nil {
		return err
	}
	read += n
	if c.Arg, _, err = rezi.DecInt(data[read:]); err != nil {
		return err
	}
	return nil
}

// conflictEntry is one conflict log line in serialized form.
type conflictEntry struct {
	State int
	Sym   string
	A     int // shift state / rule a
	B     int // reduce rule / rule b
}

func (c conflictEntry) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncInt(c.State)...)
	data = append(data, rezi.EncString(c.Sym)...)
	data = append(data, rezi.EncInt(c.A)...)
	data = append(data, rezi.EncInt(c.B)...)
	return data, nil
}

func (c *conflictEntry) UnmarshalBinary(data []byte) error {
	var n, read int
	var err error
	if c.State, n, err = rezi.DecInt(data); err != nil {
		return err
	}
	read = n
	if c.Sym, n, err = rezi.DecString(data[read:]); err != nil {
		return err
	}
	read += n
	if c.A, n, err = rezi.DecInt(data[read:]); err != nil {
		return err
	}
	read += n
	if c.B, _, err = rezi.DecInt(data[read:]); err != nil {
		return err
	}
	return nil
}

// tableRecord is the on-disk form of a table: version and fingerprint tags
// followed by all four payload fields, losslessly.
type tableRecord struct {
	Version         string
	Fingerprint     string
	Variant         int
	StateCount      int
	Actions         []cellEntry
	Gotos           []cellEntry
	SR              []conflictEntry
	RR              []conflictEntry
	Expect          int
	ResolveSilently bool
}

func newTableRecord(version string, g *lr.Grammar, t *lr.Table) *tableRecord {
	rec := &tableRecord{
		Version:     version,
		Fingerprint: fingerprint(g),
		Variant:     int(t.Variant),
		StateCount:  t.StateCount,
	}
	for key, a := range t.Actions {
		rec.Actions = append(rec.Actions, cellEntry{
			State: key.State, Sym: string(key.Sym), Kind: int(a.Kind), Arg: a.Arg,
		})
	}
	for key, j := range t.Gotos {
		rec.Gotos = append(rec.Gotos, cellEntry{State: key.State, Sym: string(key.Sym), Arg: j})
	}
	sortCells(rec.Actions) // map order is random; the file should not be
	sortCells(rec.Gotos)
	if t.Log != nil {
		for _, c := range t.Log.SR {
			rec.SR = append(rec.SR, conflictEntry{
				State: c.State, Sym: string(c.Sym), A: c.ShiftState, B: c.ReduceRule,
			})
		}
		for _, c := range t.Log.RR {
			rec.RR = append(rec.RR, conflictEntry{
				State: c.State, Sym: string(c.Sym), A: c.RuleA, B: c.RuleB,
			})
		}
		rec.Expect = t.Log.Expect
		rec.ResolveSilently = t.Log.ResolveSilently
	}
	return rec
}

func sortCells(cells []cellEntry) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].State != cells[j].State {
			return cells[i].State < cells[j].State
		}
		return cells[i].Sym < cells[j].Sym
	})
}

// table rebuilds the in-memory form.
func (rec *tableRecord) table() *lr.Table {
	t := &lr.Table{
		Variant:    lr.Variant(rec.Variant),
		StateCount: rec.StateCount,
		Actions:    make(map[lr.StateSym]lr.Action),
		Gotos:      make(map[lr.StateSym]int),
		Log: &lr.Log{
			Expect:          rec.Expect,
			ResolveSilently: rec.ResolveSilently,
		},
	}
	for _, c := range rec.Actions {
		t.Actions[lr.StateSym{State: c.State, Sym: lr.Symbol(c.Sym)}] =
			lr.Action{Kind: lr.ActionKind(c.Kind), Arg: c.Arg}
	}
	for _, c := range rec.Gotos {
		t.Gotos[lr.StateSym{State: c.State, Sym: lr.Symbol(c.Sym)}] = c.Arg
	}
	for _, c := range rec.SR {
		t.Log.SR = append(t.Log.SR, lr.SRConflict{
			State: c.State, Sym: lr.Symbol(c.Sym), ShiftState: c.A, ReduceRule: c.B,
		})
	}
	for _, c := range rec.RR {
		t.Log.RR = append(t.Log.RR, lr.RRConflict{
			State: c.State, Sym: lr.Symbol(c.Sym), RuleA: c.A, RuleB: c.B,
		})
	}
	return t
}

func (rec tableRecord) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncString(rec.Version)...)
	data = append(data, rezi.EncString(rec.Fingerprint)...)
	data = append(data, rezi.EncInt(rec.Variant)...)
	data = append(data, rezi.EncInt(rec.StateCount)...)
	data = append(data, encCells(rec.Actions)...)
	data = append(data, encCells(rec.Gotos)...)
	data = append(data, encConflicts(rec.SR)...)
	data = append(data, encConflicts(rec.RR)...)
	data = append(data, rezi.EncInt(rec.Expect)...)
	data = append(data, rezi.EncBool(rec.ResolveSilently)...)
	return data, nil
}

func (rec *tableRecord) UnmarshalBinary(data []byte) error {
	var n, read int
	var err error
	if rec.Version, n, err = rezi.DecString(data); err != nil {
		return err
	}
	read = n
	if rec.Fingerprint, n, err = rezi.DecString(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.Variant, n, err = rezi.DecInt(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.StateCount, n, err = rezi.DecInt(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.Actions, n, err = decCells(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.Gotos, n, err = decCells(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.SR, n, err = decConflicts(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.RR, n, err = decConflicts(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.Expect, n, err = rezi.DecInt(data[read:]); err != nil {
		return err
	}
	read += n
	if rec.ResolveSilently, _, err = rezi.DecBool(data[read:]); err != nil {
		return err
	}
	return nil
}

func encCells(cells []cellEntry) []byte {
	data := rezi.EncInt(len(cells))
	for _, c := range cells {
		data = append(data, rezi.EncBinary(c)...)
	}
	return data
}

func decCells(data []byte) ([]cellEntry, int, error) {
	count, read, err := rezi.DecInt(data)
	if err != nil {
		return nil, 0, err
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("negative cell count")
	}
	var cells []cellEntry
	for i := 0; i < count; i++ {
		var c cellEntry
		n, err := rezi.DecBinary(data[read:], &c)
		if err != nil {
			return nil, 0, err
		}
		read += n
		cells = append(cells, c)
	}
	return cells, read, nil
}

func encConflicts(cs []conflictEntry) []byte {
	data := rezi.EncInt(len(cs))
	for _, c := range cs {
		data = append(data, rezi.EncBinary(c)...)
	}
	return data
}

func decConflicts(data []byte) ([]conflictEntry, int, error) {
	count, read, err := rezi.DecInt(data)
	if err != nil {
		return nil, 0, err
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("negative conflict count")
	}
	var cs []conflictEntry
	for i := 0; i < count; i++ {
		var c conflictEntry
		n, err := rezi.DecBinary(data[read:], &c)
		if err != nil {
			return nil, 0, err
		}
		read += n
		cs = append(cs, c)
	}
	return cs, read, nil
}

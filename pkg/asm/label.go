package asm

import (
	"fmt"

	"github.com/akhildatla/vvm/pkg/vvm"
)

// labeler tracks forward references to labels in one instruction
// stream and patches them once the label's location is known.
type labeler struct {
	entries map[string]*labelEntry
}

type labelEntry struct {
	deps     []int
	location uint64
	resolved bool
}

func newLabeler() *labeler {
	return &labeler{entries: make(map[string]*labelEntry)}
}

func (l *labeler) entry(name string) *labelEntry {
	e, ok := l.entries[name]
	if !ok {
		e = &labelEntry{}
		l.entries[name] = e
	}
	return e
}

func patch(code []uint64, loc int, location uint64) {
	op, _ := vvm.EncodeOperand(location, vvm.KindImmediate)
	code[loc] = uint64(op)
}

// addDep records that code[loc] must hold the label's location,
// patching immediately when the label is already resolved.
func (l *labeler) addDep(name string, code []uint64, loc int) {
	e := l.entry(name)
	if e.resolved {
		patch(code, loc, e.location)
		return
	}
	e.deps = append(e.deps, loc)
}

// resolve fixes the label's location and patches all pending uses.
func (l *labeler) resolve(name string, code []uint64, location uint64) {
	e := l.entry(name)
	e.location = location
	e.resolved = true
	for _, dep := range e.deps {
		patch(code, dep, location)
	}
	e.deps = nil
}

// check reports a label that was referenced but never defined.
func (l *labeler) check() error {
	for name, e := range l.entries {
		if !e.resolved {
			return fmt.Errorf("%w: %s", ErrUnknownLabel, name)
		}
	}
	return nil
}

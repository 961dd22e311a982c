// Package ilist implements the per-function instruction stream and the
// process-wide label list.
package ilist

import "fmt"

// LabelKind distinguishes a code label from a data label.
type LabelKind int

const (
	LabelCode LabelKind = iota
	LabelData
)

// Label is a named or compiler-synthesized address reference. Location
// is unset (HasLocation false) until the output stage resolves it.
type Label struct {
	Name        string
	Kind        LabelKind
	Referenced  bool
	HasLocation bool
	Location    int
	Link        *Label // remapping target, used by optimizer passes
}

// Table is the process-wide label list, bundled into a value here rather
// than left as a package global, so a compiler run owns one instance.
type Table struct {
	labels  []*Label
	nextGen int
}

func NewTable() *Table {
	return &Table{}
}

// NewGenericLabel allocates a compiler-synthesized label named L%04X,
// monotonically.
func (t *Table) NewGenericLabel(kind LabelKind) *Label {
	l := &Label{Name: fmt.Sprintf("L%04X", t.nextGen), Kind: kind}
	t.nextGen++
	t.labels = append(t.labels, l)
	return l
}

// NewLabel defines a user-named label.
func (t *Table) NewLabel(name string, kind LabelKind) *Label {
	l := &Label{Name: name, Kind: kind}
	t.labels = append(t.labels, l)
	return l
}

// FindLabel does a linear search by name.
func (t *Table) FindLabel(name string) *Label {
	for _, l := range t.labels {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// All returns every label in definition order, so a caller can confirm
// every label acquired a location by the end of the binary writer's
// pre-pass.
func (t *Table) All() []*Label {
	return t.labels
}

// Resolve follows a label's Link chain to its ultimate target, used after
// an optimizer pass remaps one label onto another.
func (l *Label) Resolve() *Label {
	for l.Link != nil {
		l = l.Link
	}
	return l
}

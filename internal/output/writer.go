package output

import "github.com/splendidnut/Neolithic-sub000/internal/machine"

// Writer is the small adapter interface both the DASM and binary
// writers implement: init, done, ext, writeFunction, writeArray,
// writeStruct, startBlock, endBlock.
type Writer interface {
	Init(mach machine.Info, entryName string, lo *Layout) error
	Done() error
	Ext() string

	StartBlock(b *Block) error
	EndBlock(b *Block) error

	WriteFunction(b *Block) error
	WriteArray(b *Block) error
	WriteStruct(b *Block) error
}

// Emit drives w over every block of lo in emission order: blocks appear
// in the order they were added except where the code generator
// explicitly advances to the next page.
func Emit(w Writer, lo *Layout, mach machine.Info, entryName string) error {
	if err := w.Init(mach, entryName, lo); err != nil {
		return err
	}
	for _, b := range lo.All() {
		if err := w.StartBlock(b); err != nil {
			return err
		}
		var err error
		switch b.Kind {
		case KindCode:
			err = w.WriteFunction(b)
		case KindStruct:
			err = w.WriteStruct(b)
		default:
			err = w.WriteArray(b)
		}
		if err != nil {
			return err
		}
		if err := w.EndBlock(b); err != nil {
			return err
		}
	}
	return w.Done()
}

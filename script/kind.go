package script

// Kind is the variant of an edit operation.
//
//go:generate go tool stringer -type=Kind
type Kind int

const (
	Insert Kind = iota // Items enter the sequence
	Remove             // Items leave the sequence
	Move               // A single item relocates
	Change             // Items are replaced in place with updated content

	numKinds = iota
)

// Structural reports whether operations of kind k change the length of a sequence.
func (k Kind) Structural() bool { return k == Insert || k == Remove }

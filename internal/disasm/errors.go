package disasm

import (
	"errors"
	"fmt"
)

// ErrStructural matches every *StructuralError under errors.Is.
var ErrStructural = errors.New("disasm: structural error")

// Kind classifies a StructuralError.
type Kind uint8

const (
	// NoCode means the object has no executable section or segment.
	NoCode Kind = iota + 1
	// Misaligned means the code length is not a multiple of four bytes.
	Misaligned
	// Ambiguous means more than one candidate qualified at the same tier.
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case NoCode:
		return "no code"
	case Misaligned:
		return "misaligned"
	case Ambiguous:
		return "ambiguous"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// StructuralError reports an object that cannot be disassembled at all.
// No partial Disassembly accompanies it.
type StructuralError struct {
	Kind   Kind
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Detail == "" {
		return "disasm: " + e.Kind.String()
	}
	return fmt.Sprintf("disasm: %s: %s", e.Kind, e.Detail)
}

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

func structural(kind Kind, format string, args ...any) error {
	return &StructuralError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

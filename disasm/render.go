// Package disasm renders decoded 8086 instructions as NASM-compatible
// assembly text.
package disasm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/sim8086/insts"
)

// Directive is the file-scoped line that precedes every listing.
const Directive = "bits 16"

// Render returns the assembly text of one instruction in the form
// "mnemonic dest, source". It fails with an error of kind
// insts.KindRenderFailure when the payload is a decode failure or the
// operands are incomplete.
func Render(p insts.Payload, ops insts.Operands) (string, error) {
	r := &renderer{}
	p.Accept(r)
	if r.err != nil {
		return "", &insts.Error{Kind: insts.KindRenderFailure, Opcode: p.Op(), Offset: -1, Err: r.err}
	}

	if ops.Dst == nil || ops.Src == nil {
		return "", &insts.Error{
			Kind:   insts.KindRenderFailure,
			Opcode: p.Op(),
			Offset: -1,
			Err:    errors.New("instruction has an unresolved operand"),
		}
	}

	dst := Operand(ops.Dst, ops.Width)
	src := Operand(ops.Src, ops.Width)

	// A memory destination with immediate data carries no register to size
	// the operation, so the width is spelled out.
	if _, isMem := ops.Dst.(*insts.MemoryOperand); isMem {
		if _, isImm := ops.Src.(*insts.ImmediateOperand); isImm {
			dst = ops.Width.String() + " " + dst
		}
	}

	return fmt.Sprintf("%s %s, %s", r.mnemonic, dst, src), nil
}

// renderer picks the mnemonic and rejects failures.
type renderer struct {
	mnemonic insts.Mnemonic
	err      error
}

func (r *renderer) VisitAluRegMem(p *insts.AluRegMem)           { r.mnemonic = p.Mnemonic }
func (r *renderer) VisitAluImmediate(p *insts.AluImmediate)     { r.mnemonic = p.Mnemonic }
func (r *renderer) VisitMovWithMode(p *insts.MovWithMode)       { r.mnemonic = p.Mnemonic }
func (r *renderer) VisitMovWithoutMode(p *insts.MovWithoutMode) { r.mnemonic = p.Mnemonic }

func (r *renderer) VisitDecodeFailure(p *insts.DecodeFailure) {
	r.err = p
}

// Operand renders a single operand.
func Operand(op insts.Operand, w insts.Width) string {
	switch o := op.(type) {
	case *insts.RegisterOperand:
		return o.Reg.String()
	case *insts.SegmentOperand:
		return o.Seg.String()
	case *insts.MemoryOperand:
		return EffectiveAddress(o)
	case *insts.ImmediateOperand:
		return Immediate(o.Value, w)
	}
	return "?"
}

// EffectiveAddress renders a memory operand in brackets. The direct form
// always prints its 16-bit address; otherwise a zero displacement is
// omitted and a negative one prints with a minus sign.
func EffectiveAddress(m *insts.MemoryOperand) string {
	if addr, ok := m.Direct.Get(); ok {
		return fmt.Sprintf("[%d]", addr)
	}

	names := make([]string, len(m.Bases))
	for i, b := range m.Bases {
		names[i] = b.String()
	}

	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strings.Join(names, "+"))
	switch {
	case m.Disp > 0:
		fmt.Fprintf(&sb, "+%d", m.Disp)
	case m.Disp < 0:
		fmt.Fprintf(&sb, "-%d", -int32(m.Disp))
	}
	sb.WriteString("]")
	return sb.String()
}

// Immediate renders immediate data as a signed decimal in the operand
// width.
func Immediate(v uint16, w insts.Width) string {
	if w == insts.WidthByte {
		return fmt.Sprintf("%d", int8(v))
	}
	return fmt.Sprintf("%d", int16(v))
}

// Annotate appends a NASM comment to a line. An empty comment leaves the
// line unchanged.
func Annotate(line, comment string) string {
	if comment == "" {
		return line
	}
	return line + " ; " + comment
}

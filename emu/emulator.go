// Package emu models the 8086 bus interface unit, execution unit and memory
// plane, and drives the decode loop over a linear instruction stream.
package emu

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/sim8086/disasm"
	"github.com/sarchlab/sim8086/insts"
)

const (
	// DefaultFallbackStep is how far the cursor advances past an
	// instruction that cannot be decoded.
	DefaultFallbackStep = 2

	// MaxInputSize is the largest instruction stream the loop processes.
	MaxInputSize = 65535
)

// LatencyTable estimates the clocks an instruction takes.
type LatencyTable interface {
	GetLatency(p insts.Payload, ops insts.Operands) uint64
}

// Sink receives rendered instruction lines.
type Sink interface {
	WriteLine(line string) error
}

// StepResult represents the result of processing a single instruction.
type StepResult struct {
	// Offset is the cursor position of the instruction.
	Offset int

	// Length is how far the cursor advanced.
	Length int

	// Payload is the decoded instruction, nil when Exhausted.
	Payload insts.Payload

	// Operands are the resolved operands of a decoded instruction.
	Operands insts.Operands

	// Text is the rendered instruction, empty on failure.
	Text string

	// Exec reports execution when execution is enabled.
	Exec ExecResult

	// Cycles is the estimated clock count when a latency table or fetcher
	// is configured.
	Cycles uint64

	// Err is set if the instruction could not be decoded or rendered. Its
	// kind is available through insts.KindOf.
	Err error

	// Exhausted is true when the cursor reached the end of the stream and
	// no instruction was processed.
	Exhausted bool
}

// Line returns the listing line for the step: the text, followed by the
// register changes as a comment when the instruction executed.
func (r StepResult) Line() string {
	if len(r.Exec.Changes) == 0 {
		return r.Text
	}
	parts := make([]string, len(r.Exec.Changes))
	for i, c := range r.Exec.Changes {
		parts[i] = c.String()
	}
	return disasm.Annotate(r.Text, strings.Join(parts, " "))
}

// RunStats summarizes a run.
type RunStats struct {
	Instructions int
	Failures     int
	Executed     int
	Bytes        int
	Cycles       uint64
}

// Emulator runs the 8086 decode loop over one instruction stream.
type Emulator struct {
	logger  logrus.FieldLogger
	decoder *insts.Decoder

	biu     *BIU
	regFile *RegFile
	memory  *Memory
	eu      *EU

	fetcher Fetcher
	latency LatencyTable
	trace   func(StepResult)

	stream       []byte
	cursor       int
	loadAddr     uint32
	fallbackStep int
	maxInput     int
	execute      bool

	instructionCount uint64
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithLogger sets the logger for decode events. The default discards all
// output.
func WithLogger(l logrus.FieldLogger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = l
	}
}

// WithFallbackStep sets how many bytes the cursor skips after a decode
// failure. Values below 1 are raised to 1 so that the loop always makes
// progress.
func WithFallbackStep(n int) EmulatorOption {
	return func(e *Emulator) {
		if n < 1 {
			n = 1
		}
		e.fallbackStep = n
	}
}

// WithExecution enables execution of decoded instructions.
func WithExecution(enabled bool) EmulatorOption {
	return func(e *Emulator) {
		e.execute = enabled
	}
}

// WithFetcher fills the prefetch queue through f instead of directly from
// the stream.
func WithFetcher(f Fetcher) EmulatorOption {
	return func(e *Emulator) {
		e.fetcher = f
	}
}

// WithLatencyTable enables clock estimation.
func WithLatencyTable(t LatencyTable) EmulatorOption {
	return func(e *Emulator) {
		e.latency = t
	}
}

// WithMaxInput lowers the maximum input size. Values outside
// 1..MaxInputSize select MaxInputSize.
func WithMaxInput(n int) EmulatorOption {
	return func(e *Emulator) {
		if n < 1 || n > MaxInputSize {
			n = MaxInputSize
		}
		e.maxInput = n
	}
}

// WithMemory sets the memory plane, so that a Fetcher can be built over
// the same memory before the emulator exists.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithTrace calls fn with the result of every processed instruction.
func WithTrace(fn func(StepResult)) EmulatorOption {
	return func(e *Emulator) {
		e.trace = fn
	}
}

// NewEmulator creates a new 8086 emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Emulator{
		logger:       discard,
		decoder:      insts.NewDecoder(),
		fallbackStep: DefaultFallbackStep,
		maxInput:     MaxInputSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.biu = NewBIU()
	e.regFile = &RegFile{}
	if e.memory == nil {
		e.memory = NewMemory()
	}
	e.eu = NewEU(e.regFile, e.biu, e.memory)

	return e
}

// BIU returns the bus interface unit.
func (e *Emulator) BIU() *BIU {
	return e.biu
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Cursor returns the offset of the next instruction in the stream.
func (e *Emulator) Cursor() int {
	return e.cursor
}

// LoadAddress returns the physical address the stream was loaded at.
func (e *Emulator) LoadAddress() uint32 {
	return e.loadAddr
}

// InstructionCount returns the number of instructions processed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram sets the instruction stream and copies it into memory at
// CS:0000, replacing the previous image. Bytes beyond the maximum input size
// are ignored.
func (e *Emulator) LoadProgram(program []byte) {
	e.memory.Zero(e.loadAddr, len(e.stream))

	if len(program) > e.maxInput {
		e.logger.WithFields(logrus.Fields{
			"length": len(program),
			"max":    e.maxInput,
		}).Warn("input longer than maximum size, ignoring tail")
		program = program[:e.maxInput]
	}

	e.stream = program
	e.cursor = 0
	e.biu.SetIP(0)
	e.loadAddr = e.biu.CodeAddress()
	e.memory.LoadProgram(e.loadAddr, program)
}

// Reset clears all state, including the loaded program.
func (e *Emulator) Reset() {
	e.biu.Reset()
	*e.regFile = RegFile{}
	e.memory.Clear()
	e.stream = nil
	e.cursor = 0
	e.loadAddr = 0
	e.instructionCount = 0
}

// Step processes the instruction at the cursor and advances past it.
func (e *Emulator) Step() StepResult {
	if e.cursor >= len(e.stream) {
		return StepResult{Offset: e.cursor, Exhausted: true}
	}

	result := StepResult{Offset: e.cursor}

	// 1. Refill the prefetch queue
	if e.fetcher != nil {
		result.Cycles += uint64(e.biu.RefillFrom(e.fetcher, e.loadAddr+uint32(e.cursor)))
	} else {
		e.biu.Refill(e.stream, e.cursor)
	}

	// 2. Decode
	p := e.decoder.Decode(e.biu.Window())
	result.Payload = p
	log := e.logger.WithFields(logrus.Fields{
		"offset": e.cursor,
		"opcode": fmt.Sprintf("0x%02X", p.Op()),
	})

	if f, ok := p.(*insts.DecodeFailure); ok {
		result.Err = f.AsError(e.cursor)
		log.WithField("kind", f.Kind.String()).Warn("cannot decode instruction")
		return e.finish(result, e.fallbackStep)
	}

	length := p.Len()
	log = log.WithField("length", length)

	if remaining := len(e.stream) - e.cursor; length > remaining {
		result.Err = &insts.Error{
			Kind:   insts.KindInputExhausted,
			Opcode: p.Op(),
			Offset: e.cursor,
			Err:    errors.Errorf("instruction needs %d bytes, %d remain", length, remaining),
		}
		log.WithField("kind", insts.KindInputExhausted.String()).Warn("instruction truncated by end of input")
		return e.finish(result, remaining)
	}

	// 3. Locate operands
	ops, err := insts.Locate(p)
	if err != nil {
		result.Err = e.locate(err, p.Op())
		log.WithField("kind", insts.KindOf(err).String()).Warn("cannot resolve operands")
		return e.finish(result, e.fallbackStep)
	}
	result.Operands = ops

	// 4. Render
	text, err := disasm.Render(p, ops)
	if err != nil {
		result.Err = e.locate(err, p.Op())
		log.WithField("kind", insts.KindRenderFailure.String()).WithError(err).Error("cannot render instruction")
		return e.finish(result, length)
	}
	result.Text = text

	// 5. Execute
	if e.execute {
		result.Exec = e.eu.Execute(p, ops)
		if result.Exec.Err != nil {
			log.WithError(result.Exec.Err).Debug("instruction not executed")
		}
	}

	if e.latency != nil {
		result.Cycles += e.latency.GetLatency(p, ops)
	}

	log.WithField("text", text).Debug("decoded instruction")
	return e.finish(result, length)
}

// locate attaches the cursor to an error from a later pipeline stage.
func (e *Emulator) locate(err error, op byte) error {
	var ie *insts.Error
	if errors.As(err, &ie) {
		located := *ie
		located.Offset = e.cursor
		return &located
	}
	return &insts.Error{Kind: insts.KindOf(err), Opcode: op, Offset: e.cursor, Err: err}
}

func (e *Emulator) finish(result StepResult, advance int) StepResult {
	result.Length = advance
	e.cursor += advance
	e.biu.Advance(advance)
	e.instructionCount++

	if e.trace != nil {
		e.trace(result)
	}
	return result
}

// Run processes the stream to completion, writing one line per rendered
// instruction to sink. Failures are logged and skipped; the returned error
// is the first sink failure, if any.
func (e *Emulator) Run(sink Sink) (RunStats, error) {
	var (
		stats    RunStats
		firstErr error
	)

	for {
		result := e.Step()
		if result.Exhausted {
			break
		}

		stats.Bytes += result.Length
		stats.Cycles += result.Cycles

		if result.Err != nil {
			stats.Failures++
			continue
		}
		if result.Exec.Executed {
			stats.Executed++
		}

		if err := sink.WriteLine(result.Line()); err != nil {
			stats.Failures++
			e.logger.WithFields(logrus.Fields{
				"offset": result.Offset,
				"opcode": fmt.Sprintf("0x%02X", result.Payload.Op()),
				"kind":   insts.KindRenderFailure.String(),
			}).WithError(err).Error("cannot write instruction")
			if firstErr == nil {
				firstErr = &insts.Error{
					Kind:   insts.KindRenderFailure,
					Opcode: result.Payload.Op(),
					Offset: result.Offset,
					Err:    err,
				}
			}
			continue
		}
		stats.Instructions++
	}

	e.logger.WithFields(logrus.Fields{
		"instructions": stats.Instructions,
		"failures":     stats.Failures,
		"bytes":        stats.Bytes,
	}).Info("decode finished")

	return stats, firstErr
}

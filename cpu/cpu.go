package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
	"time"

	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/keypad"
)

const (
	MEMORY_SIZE      = 4096  // Bytes of addressable memory.
	PROGRAM_START    = 0x200 // Load address of program images.
	PROGRAM_SIZE     = MEMORY_SIZE - PROGRAM_START
	REGISTER_COUNT   = 16  // General purpose registers.
	VF               = 0xF // Flag register.
	INSTRUCTION_SIZE = 2   // Bytes per instruction word.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("%#x", MEMORY_SIZE),
	"PROGRAM_START": fmt.Sprintf("%#x", PROGRAM_START),
	"PROGRAM_SIZE":  fmt.Sprintf("%#x", PROGRAM_SIZE),
	"FONT_START":    fmt.Sprintf("%#x", FONT_START),
	"FONT_HEIGHT":   fmt.Sprintf("%v", FONT_HEIGHT),
	"STACK_LIMIT":   fmt.Sprintf("%v", STACK_LIMIT),
}

// Random is a source of uniformly distributed random numbers.
// *math/rand/v2.Rand satisfies it.
type Random interface {
	Uint32() uint32
}

// Cpu is the interpreter state.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	// Diagnostic receives non-fatal conditions, such as unknown opcodes.
	// If nil, they are logged.
	Diagnostic func(pc uint16, err error)

	Display *display.Display // Framebuffer, written by draw and clear.
	Keypad  *keypad.Keypad   // Key state, read by key skips and waits.
	Random  Random           // Random byte source.

	Memory   [MEMORY_SIZE]byte     // Address space.
	Register [REGISTER_COUNT]uint8 // V0 - VF.
	Index    uint16                // Index register, I.
	Pc       uint16                // Address of the next instruction.
	Stack    Stack                 // Return address stack.
	Delay    uint8                 // Delay timer.
	Sound    uint8                 // Sound timer.

	State       State // Instruction execution state.
	KeyRegister uint8 // Register awaiting a key, in STATE_AWAITING_KEY.

	Ticks int // Instruction ticks since reset.
}

// NewCpu creates a new, all-zero CPU with its own display and keypad.
// Reset must be called before it can run.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Display: &display.Display{},
		Keypad:  &keypad.Keypad{},
	}

	cpu.Seed(uint64(time.Now().UnixNano()))

	return
}

// Seed installs a deterministic random number generator.
func (cpu *Cpu) Seed(seed uint64) {
	cpu.Random = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %03X\n", "i", cpu.Index)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %02X\n", fmt.Sprintf("v%x", n), val)
	}
	var strval string
	if val, ok := cpu.Stack.Peek(); ok {
		strval = fmt.Sprintf("%03X (%d)", val, cpu.Stack.Sp)
	} else {
		strval = "---"
	}
	text += fmt.Sprintf("% 5s: %v\n", "stack", strval)
	text += fmt.Sprintf("% 5s: %02X\n", "dt", cpu.Delay)
	text += fmt.Sprintf("% 5s: %02X\n", "st", cpu.Sound)
	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.State)

	return
}

// Reset the CPU state.
// - Clears memory, registers, stack, timers and the display.
// - Installs the font.
// - Sets the program counter to the program start address.
//
// Any loaded program is discarded.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Register[:])
	cpu.Index = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Reset()
	cpu.Delay = 0
	cpu.Sound = 0
	cpu.State = STATE_RUNNING
	cpu.KeyRegister = 0
	cpu.Ticks = 0

	copy(cpu.Memory[FONT_START:], FONT[:])

	cpu.Display.Clear()
}

// Load copies a program image to the program start address.
// It must follow Reset.
func (cpu *Cpu) Load(image []byte) (err error) {
	if len(image) > PROGRAM_SIZE {
		err = ErrProgramSize
		return
	}

	copy(cpu.Memory[PROGRAM_START:], image)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	return
}

// memory returns a slice of memory, or an ErrAddress if any byte of
// it is outside of the address space.
func (cpu *Cpu) memory(addr uint16, length int) (mem []byte, err error) {
	end := int(addr) + length
	if end > MEMORY_SIZE {
		err = ErrAddress{Address: int(addr), Length: length}
		return
	}

	mem = cpu.Memory[addr:end]
	return
}

// diagnose reports a non-fatal condition.
func (cpu *Cpu) diagnose(pc uint16, err error) {
	if cpu.Diagnostic != nil {
		cpu.Diagnostic(pc, err)
		return
	}

	log.Printf("cpu: %03x: %v", pc, err)
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	mem, err := cpu.memory(cpu.Pc, INSTRUCTION_SIZE)
	if err != nil {
		return
	}

	code = Code(binary.BigEndian.Uint16(mem))
	return
}

// Tick executes a single instruction cycle.
//
// In STATE_AWAITING_KEY no instruction is fetched; the keypad is polled
// once instead.
//
// A failing tick returns an error and leaves the CPU unchanged.
func (cpu *Cpu) Tick() (err error) {
	if cpu.State == STATE_AWAITING_KEY {
		cpu.awaitKey()
		cpu.Ticks++
		return
	}

	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}

// TickTimers decrements the delay and sound timers, stopping at zero.
func (cpu *Cpu) TickTimers() {
	if cpu.Delay > 0 {
		cpu.Delay--
	}
	if cpu.Sound > 0 {
		cpu.Sound--
	}
}

// awaitKey polls the keypad for the pending key wait.
func (cpu *Cpu) awaitKey() {
	key, ok := cpu.Keypad.Pressed()
	if !ok {
		return
	}

	cpu.Register[cpu.KeyRegister] = uint8(key)
	cpu.State = STATE_RUNNING
	cpu.Pc += INSTRUCTION_SIZE
}

// flag converts a condition to a flag register value.
func flag(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}

// Execute executes a single decoded instruction at the program counter.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	next_pc := cpu.Pc + INSTRUCTION_SIZE

	x := code.X()
	y := code.Y()
	vx := cpu.Register[x]
	vy := cpu.Register[y]
	reg := &cpu.Register

	switch code.Op() {
	case OP_CLS:
		cpu.Display.Clear()
	case OP_RET:
		addr, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		next_pc = addr
	case OP_JP:
		next_pc = code.Addr()
	case OP_CALL:
		if !cpu.Stack.Push(next_pc) {
			err = ErrStackFull
			return
		}
		next_pc = code.Addr()
	case OP_SE_BYTE:
		if vx == code.Byte() {
			next_pc += INSTRUCTION_SIZE
		}
	case OP_SNE_BYTE:
		if vx != code.Byte() {
			next_pc += INSTRUCTION_SIZE
		}
	case OP_SE_REG:
		if vx == vy {
			next_pc += INSTRUCTION_SIZE
		}
	case OP_SNE_REG:
		if vx != vy {
			next_pc += INSTRUCTION_SIZE
		}
	case OP_LD_BYTE:
		reg[x] = code.Byte()
	case OP_ADD_BYTE:
		reg[x] = vx + code.Byte()
	case OP_LD_REG:
		reg[x] = vy
	case OP_OR:
		reg[x] = vx | vy
	case OP_AND:
		reg[x] = vx & vy
	case OP_XOR:
		reg[x] = vx ^ vy
	case OP_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		reg[x] = uint8(sum)
		reg[VF] = uint8(sum >> 8)
	case OP_SUB:
		reg[x] = vx - vy
		reg[VF] = flag(vx >= vy)
	case OP_SHR:
		reg[x] = vx >> 1
		reg[VF] = vx & 1
	case OP_SUBN:
		reg[x] = vy - vx
		reg[VF] = flag(vy >= vx)
	case OP_SHL:
		reg[x] = vx << 1
		reg[VF] = vx >> 7
	case OP_LD_I:
		cpu.Index = code.Addr()
	case OP_JP_V0:
		addr := code.Addr() + uint16(reg[0])
		if addr >= MEMORY_SIZE {
			err = ErrAddress{Address: int(addr), Length: INSTRUCTION_SIZE}
			return
		}
		next_pc = addr
	case OP_RND:
		reg[x] = uint8(cpu.Random.Uint32()) & code.Byte()
	case OP_DRW:
		var sprite []byte
		sprite, err = cpu.memory(cpu.Index, int(code.N()))
		if err != nil {
			return
		}
		reg[VF] = flag(cpu.Display.Draw(int(vx), int(vy), sprite))
	case OP_SKP, OP_SKNP:
		key := keypad.Key(vx)
		if !key.Valid() {
			err = keypad.ErrKeyInvalid
			return
		}
		if cpu.Keypad.IsPressed(key) == (code.Op() == OP_SKP) {
			next_pc += INSTRUCTION_SIZE
		}
	case OP_LD_DT:
		reg[x] = cpu.Delay
	case OP_LD_KEY:
		key, ok := cpu.Keypad.Pressed()
		if ok {
			reg[x] = uint8(key)
		} else {
			// pc stays here until awaitKey sees a key.
			cpu.State = STATE_AWAITING_KEY
			cpu.KeyRegister = x
			next_pc = cpu.Pc
		}
	case OP_SET_DT:
		cpu.Delay = vx
	case OP_SET_ST:
		cpu.Sound = vx
	case OP_ADD_I:
		cpu.Index += uint16(vx)
	case OP_LD_FONT:
		cpu.Index = FONT_START + uint16(vx&0xf)*FONT_HEIGHT
	case OP_BCD:
		var mem []byte
		mem, err = cpu.memory(cpu.Index, 3)
		if err != nil {
			return
		}
		mem[0] = vx / 100
		mem[1] = (vx / 10) % 10
		mem[2] = vx % 10
	case OP_STORE:
		var mem []byte
		mem, err = cpu.memory(cpu.Index, int(x)+1)
		if err != nil {
			return
		}
		copy(mem, reg[:x+1])
	case OP_LOAD:
		var mem []byte
		mem, err = cpu.memory(cpu.Index, int(x)+1)
		if err != nil {
			return
		}
		copy(reg[:x+1], mem)
	default:
		cpu.diagnose(cpu.Pc, errors.Join(ErrOpcode(code), ErrOpcodeUnknown))
	}

	cpu.Pc = next_pc

	return
}

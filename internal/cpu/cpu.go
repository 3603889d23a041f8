// Package cpu implements the NES 2A03's 6502-derived CPU core.
package cpu

// AddressingMode identifies how an instruction's operand address is
// computed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect
	IndirectIndexed
	Relative
)

// Instruction describes one opcode's shape.
type Instruction struct {
	Name   string
	Opcode uint8
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// MemoryInterface is the CPU's view of the bus.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU implements the 2A03's 6502-derived processor core. Step is a
// true per-cycle stepper: when the pending-cycle countdown reaches
// zero it fetches and fully executes the next instruction, banking
// the instruction's remaining cycles; subsequent Step calls just
// decrement that countdown with no other observable effect. This
// matches the per-cycle granularity the Bus/Scheduler needs to
// interleave PPU/APU ticks, without requiring a true micro-op level
// decomposition of each instruction.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, B, V, N bool

	memory MemoryInterface

	instructions [256]*Instruction

	cycles uint64

	pendingCycles int

	nmiPending  bool
	nmiPrevious bool
	irqLine     bool

	stallCycles int // DMA/interrupt-induced stall cycles consumed with no instruction progress
}

// New creates a CPU wired to the given bus.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{memory: memory}
	cpu.initInstructions()
	return cpu
}

// Reset performs the 6502 reset sequence: 8 cycles culminating in a
// jump to the reset vector, SP and status forced to their documented
// power-on/reset values, interrupts disabled.
func (cpu *CPU) Reset() {
	cpu.SP = 0xFD
	cpu.C, cpu.Z, cpu.D, cpu.V, cpu.N = false, false, false, false, false
	cpu.I = true
	lo := uint16(cpu.memory.Read(0xFFFC))
	hi := uint16(cpu.memory.Read(0xFFFD))
	cpu.PC = (hi << 8) | lo
	cpu.pendingCycles = 0
	cpu.stallCycles = 8
	cpu.nmiPending = false
	cpu.irqLine = false
}

// Stall adds extra idle cycles (e.g. OAM DMA) during which Step does
// nothing but count down.
func (cpu *CPU) Stall(cycles int) {
	cpu.stallCycles += cycles
}

// Stalled reports whether the CPU is currently burning stall cycles.
func (cpu *CPU) Stalled() bool {
	return cpu.stallCycles > 0
}

// Step advances the CPU by exactly one CPU cycle.
func (cpu *CPU) Step() {
	cpu.cycles++

	if cpu.stallCycles > 0 {
		cpu.stallCycles--
		return
	}

	if cpu.pendingCycles > 0 {
		cpu.pendingCycles--
		return
	}

	if cpu.processPendingInterrupts() {
		return
	}

	opcode := cpu.memory.Read(cpu.PC)
	inst := cpu.instructions[opcode]
	if inst == nil {
		cpu.PC++
		return
	}
	cpu.PC++

	address, pageCrossed := cpu.operandAddress(inst.Mode)
	extra := cpu.execute(opcode, address, inst.Mode)

	total := int(inst.Cycles) + extra
	if pageCrossed && instructionPenalizesPageCross(opcode) {
		total++
	}
	if total > 1 {
		cpu.pendingCycles = total - 1
	}
}

// operandAddress resolves an instruction's operand address for the
// given addressing mode, advancing PC past the operand bytes and
// reporting whether a page boundary was crossed while indexing.
func (cpu *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false
	case Immediate:
		addr := cpu.PC
		cpu.PC++
		return addr, false
	case ZeroPage:
		addr := uint16(cpu.memory.Read(cpu.PC))
		cpu.PC++
		return addr, false
	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		return uint16(base + cpu.X), false
	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		return uint16(base + cpu.Y), false
	case Absolute:
		addr := cpu.readWord(cpu.PC)
		cpu.PC += 2
		return addr, false
	case AbsoluteX:
		base := cpu.readWord(cpu.PC)
		cpu.PC += 2
		addr := base + uint16(cpu.X)
		return addr, (base & 0xFF00) != (addr & 0xFF00)
	case AbsoluteY:
		base := cpu.readWord(cpu.PC)
		cpu.PC += 2
		addr := base + uint16(cpu.Y)
		return addr, (base & 0xFF00) != (addr & 0xFF00)
	case Indirect:
		ptr := cpu.readWord(cpu.PC)
		cpu.PC += 2
		return cpu.readWordBuggy(ptr), false
	case IndexedIndirect:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		ptr := base + cpu.X
		return cpu.readWordBuggy(uint16(ptr)), false
	case IndirectIndexed:
		base := cpu.memory.Read(cpu.PC)
		cpu.PC++
		ptr := cpu.readWordBuggy(uint16(base))
		addr := ptr + uint16(cpu.Y)
		return addr, (ptr & 0xFF00) != (addr & 0xFF00)
	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC))
		cpu.PC++
		addr := uint16(int32(cpu.PC) + int32(offset))
		return addr, (cpu.PC & 0xFF00) != (addr & 0xFF00)
	}
	return 0, false
}

func (cpu *CPU) readWord(address uint16) uint16 {
	lo := uint16(cpu.memory.Read(address))
	hi := uint16(cpu.memory.Read(address + 1))
	return (hi << 8) | lo
}

// readWordBuggy reproduces the 6502's indirect-addressing page-wrap
// bug: if the low byte of the pointer is $FF, the high byte is
// fetched from the start of the same page rather than the next page.
func (cpu *CPU) readWordBuggy(ptr uint16) uint16 {
	lo := uint16(cpu.memory.Read(ptr))
	var hiAddr uint16
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr & 0xFF00
	} else {
		hiAddr = ptr + 1
	}
	hi := uint16(cpu.memory.Read(hiAddr))
	return (hi << 8) | lo
}

func instructionPenalizesPageCross(opcode uint8) bool {
	switch opcode {
	case 0x7D, 0x79, 0x71, // ADC
		0x3D, 0x39, 0x31, // AND
		0xDD, 0xD9, 0xD1, // CMP
		0x5D, 0x59, 0x51, // EOR
		0xBD, 0xB9, 0xB1, // LDA
		0xBE,             // LDX abs,Y
		0xBC,             // LDY abs,X
		0x1D, 0x19, 0x11, // ORA
		0xFD, 0xF9, 0xF1, // SBC
		0x10, 0x30, 0x50, 0x70, 0x90, 0xB0, 0xD0, 0xF0: // branches
		return true
	}
	return false
}

// --- stack helpers ---

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(0x0100+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(0x0100 + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	lo := uint16(cpu.pop())
	hi := uint16(cpu.pop())
	return (hi << 8) | lo
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&0x80 != 0
}

// GetStatusByte packs the flags into the 6502 status byte, with the
// unused bit 5 always set and B controlled by the caller.
func (cpu *CPU) GetStatusByte(brk bool) uint8 {
	var s uint8
	if cpu.N {
		s |= 0x80
	}
	if cpu.V {
		s |= 0x40
	}
	s |= 0x20
	if brk {
		s |= 0x10
	}
	if cpu.D {
		s |= 0x08
	}
	if cpu.I {
		s |= 0x04
	}
	if cpu.Z {
		s |= 0x02
	}
	if cpu.C {
		s |= 0x01
	}
	return s
}

// SetStatusByte unpacks a status byte into the flags (bits 4 and 5
// are not stored as CPU state, matching real hardware).
func (cpu *CPU) SetStatusByte(s uint8) {
	cpu.N = s&0x80 != 0
	cpu.V = s&0x40 != 0
	cpu.D = s&0x08 != 0
	cpu.I = s&0x04 != 0
	cpu.Z = s&0x02 != 0
	cpu.C = s&0x01 != 0
}

// --- interrupts ---

// SetNMI latches NMI on the falling edge of state, matching the
// 2A03's edge-triggered NMI line.
func (cpu *CPU) SetNMI(state bool) {
	if cpu.nmiPrevious && !state {
		cpu.nmiPending = true
	}
	cpu.nmiPrevious = state
}

// SetIRQ sets the level-triggered IRQ line state.
func (cpu *CPU) SetIRQ(state bool) {
	cpu.irqLine = state
}

func (cpu *CPU) processPendingInterrupts() bool {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.handleInterrupt(0xFFFA, false)
		cpu.pendingCycles++ // NMI takes 8 cycles, one more than IRQ
		return true
	}
	if cpu.irqLine && !cpu.I {
		cpu.handleInterrupt(0xFFFE, false)
		return true
	}
	return false
}

func (cpu *CPU) handleInterrupt(vector uint16, brk bool) {
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte(brk))
	cpu.I = true
	cpu.PC = cpu.readWord(vector)
	cpu.pendingCycles += 6 // 7 total cycles for the interrupt sequence, 1 already charged by Step
}

// --- opcode semantics ---

func (cpu *CPU) execute(opcode uint8, address uint16, mode AddressingMode) int {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.A = cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.X = cpu.memory.Read(address)
		cpu.setZN(cpu.X)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.Y = cpu.memory.Read(address)
		cpu.setZN(cpu.Y)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		cpu.memory.Write(address, cpu.A)
	case 0x86, 0x96, 0x8E:
		cpu.memory.Write(address, cpu.X)
	case 0x84, 0x94, 0x8C:
		cpu.memory.Write(address, cpu.Y)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(cpu.memory.Read(address))
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1, 0xEB:
		cpu.sbc(cpu.memory.Read(address))

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.A &= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.A |= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.A ^= cpu.memory.Read(address)
		cpu.setZN(cpu.A)

	case 0x0A:
		cpu.A = cpu.asl(cpu.A)
	case 0x06, 0x16, 0x0E, 0x1E:
		cpu.memory.Write(address, cpu.asl(cpu.memory.Read(address)))
	case 0x4A:
		cpu.A = cpu.lsr(cpu.A)
	case 0x46, 0x56, 0x4E, 0x5E:
		cpu.memory.Write(address, cpu.lsr(cpu.memory.Read(address)))
	case 0x2A:
		cpu.A = cpu.rol(cpu.A)
	case 0x26, 0x36, 0x2E, 0x3E:
		cpu.memory.Write(address, cpu.rol(cpu.memory.Read(address)))
	case 0x6A:
		cpu.A = cpu.ror(cpu.A)
	case 0x66, 0x76, 0x6E, 0x7E:
		cpu.memory.Write(address, cpu.ror(cpu.memory.Read(address)))

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.compare(cpu.A, cpu.memory.Read(address))
	case 0xE0, 0xE4, 0xEC:
		cpu.compare(cpu.X, cpu.memory.Read(address))
	case 0xC0, 0xC4, 0xCC:
		cpu.compare(cpu.Y, cpu.memory.Read(address))

	case 0xE6, 0xF6, 0xEE, 0xFE:
		v := cpu.memory.Read(address) + 1
		cpu.memory.Write(address, v)
		cpu.setZN(v)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		v := cpu.memory.Read(address) - 1
		cpu.memory.Write(address, v)
		cpu.setZN(v)
	case 0xE8:
		cpu.X++
		cpu.setZN(cpu.X)
	case 0xCA:
		cpu.X--
		cpu.setZN(cpu.X)
	case 0xC8:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case 0x88:
		cpu.Y--
		cpu.setZN(cpu.Y)

	case 0xAA:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case 0x8A:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case 0xA8:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case 0x98:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case 0xBA:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case 0x9A:
		cpu.SP = cpu.X

	case 0x48:
		cpu.push(cpu.A)
	case 0x68:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case 0x08:
		cpu.push(cpu.GetStatusByte(true))
	case 0x28:
		cpu.SetStatusByte(cpu.pop())

	case 0x18:
		cpu.C = false
	case 0x38:
		cpu.C = true
	case 0x58:
		cpu.I = false
	case 0x78:
		cpu.I = true
	case 0xB8:
		cpu.V = false
	case 0xD8:
		cpu.D = false
	case 0xF8:
		cpu.D = true

	case 0x4C:
		cpu.PC = address
	case 0x6C:
		cpu.PC = address
	case 0x20:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
	case 0x60:
		cpu.PC = cpu.popWord() + 1
	case 0x40:
		cpu.SetStatusByte(cpu.pop())
		cpu.PC = cpu.popWord()

	case 0x90:
		return cpu.branch(!cpu.C, address)
	case 0xB0:
		return cpu.branch(cpu.C, address)
	case 0xD0:
		return cpu.branch(!cpu.Z, address)
	case 0xF0:
		return cpu.branch(cpu.Z, address)
	case 0x10:
		return cpu.branch(!cpu.N, address)
	case 0x30:
		return cpu.branch(cpu.N, address)
	case 0x50:
		return cpu.branch(!cpu.V, address)
	case 0x70:
		return cpu.branch(cpu.V, address)

	case 0x24, 0x2C:
		v := cpu.memory.Read(address)
		cpu.Z = (cpu.A & v) == 0
		cpu.N = v&0x80 != 0
		cpu.V = v&0x40 != 0

	case 0xEA, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA,
		0x80, 0x82, 0x89, 0xC2, 0xE2,
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4,
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		if mode != Implied {
			_ = cpu.memory.Read(address)
		}

	case 0x00:
		cpu.PC++
		cpu.handleInterrupt(0xFFFE, true)

	// Unofficial opcodes
	case 0xA7, 0xB7, 0xAF, 0xBF, 0xA3, 0xB3:
		cpu.A = cpu.memory.Read(address)
		cpu.X = cpu.A
		cpu.setZN(cpu.A)
	case 0x87, 0x97, 0x8F, 0x83:
		cpu.memory.Write(address, cpu.A&cpu.X)
	case 0xC7, 0xD7, 0xCF, 0xDF, 0xDB, 0xC3, 0xD3:
		v := cpu.memory.Read(address) - 1
		cpu.memory.Write(address, v)
		cpu.compare(cpu.A, v)
	case 0xE7, 0xF7, 0xEF, 0xFF, 0xFB, 0xE3, 0xF3:
		v := cpu.memory.Read(address) + 1
		cpu.memory.Write(address, v)
		cpu.sbc(v)
	case 0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13:
		v := cpu.asl(cpu.memory.Read(address))
		cpu.memory.Write(address, v)
		cpu.A |= v
		cpu.setZN(cpu.A)
	case 0x27, 0x37, 0x2F, 0x3F, 0x3B, 0x23, 0x33:
		v := cpu.rol(cpu.memory.Read(address))
		cpu.memory.Write(address, v)
		cpu.A &= v
		cpu.setZN(cpu.A)
	case 0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53:
		v := cpu.lsr(cpu.memory.Read(address))
		cpu.memory.Write(address, v)
		cpu.A ^= v
		cpu.setZN(cpu.A)
	case 0x67, 0x77, 0x6F, 0x7F, 0x7B, 0x63, 0x73:
		v := cpu.ror(cpu.memory.Read(address))
		cpu.memory.Write(address, v)
		cpu.adc(v)
	}
	return 0
}

func (cpu *CPU) adc(v uint8) {
	sum := uint16(cpu.A) + uint16(v)
	if cpu.C {
		sum++
	}
	result := uint8(sum)
	cpu.V = (cpu.A^v)&0x80 == 0 && (cpu.A^result)&0x80 != 0
	cpu.C = sum > 0xFF
	cpu.A = result
	cpu.setZN(cpu.A)
}

func (cpu *CPU) sbc(v uint8) {
	cpu.adc(^v)
}

func (cpu *CPU) compare(reg, v uint8) {
	cpu.C = reg >= v
	cpu.setZN(reg - v)
}

func (cpu *CPU) asl(v uint8) uint8 {
	cpu.C = v&0x80 != 0
	v <<= 1
	cpu.setZN(v)
	return v
}

func (cpu *CPU) lsr(v uint8) uint8 {
	cpu.C = v&0x01 != 0
	v >>= 1
	cpu.setZN(v)
	return v
}

func (cpu *CPU) rol(v uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 1
	}
	cpu.C = v&0x80 != 0
	v = (v << 1) | carryIn
	cpu.setZN(v)
	return v
}

func (cpu *CPU) ror(v uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 0x80
	}
	cpu.C = v&0x01 != 0
	v = (v >> 1) | carryIn
	cpu.setZN(v)
	return v
}

func (cpu *CPU) branch(taken bool, address uint16) int {
	if !taken {
		return 0
	}
	oldPC := cpu.PC
	cpu.PC = address
	if oldPC&0xFF00 != address&0xFF00 {
		return 2
	}
	return 1
}

// Package bus wires the CPU, PPU, APU, input ports, and cartridge
// together and drives the master clock.
package bus

import (
	"nesgo/internal/apu"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/memory"
	"nesgo/internal/ppu"
)

// Cartridge is everything the bus needs from a loaded cartridge: the
// memory package's CPU/PPU address decoding plus the mapper IRQ line
// boards like MMC3 drive off the PPU's scanline count.
type Cartridge interface {
	memory.CartridgeInterface
	OnScanline()
	IRQPending() bool
}

// oamDMA tracks the byte-by-byte progress of an OAM DMA transfer
// triggered by a write to $4014. Real hardware freezes the CPU for
// 513 cycles (514 if the transfer starts on an odd CPU cycle): one
// dummy read cycle, an optional alignment cycle, then 256 read/write
// pairs.
type oamDMA struct {
	active    bool
	page      uint8
	addr      uint8
	readValue uint8
	havePut   bool
	cycle     int
	extraWait bool
}

// Bus connects all NES components together and owns the master
// clock: one CPU cycle drives three PPU dots and one APU step.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cartridge Cartridge

	cpuCycles  uint64
	frameCount uint64

	dma oamDMA

	apuIRQ  bool
	cartIRQ bool

	lastScanline int
}

// New creates a system bus with no cartridge loaded. Call
// LoadCartridge before running.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}

	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInputSystem(b.Input)
	b.CPU = cpu.New(b.Memory)

	b.Reset()
	return b
}

// wireCallbacks binds cross-component callbacks. Re-run after
// LoadCartridge recreates any of the components it touches.
func (b *Bus) wireCallbacks() {
	b.PPU.SetNMICallback(func() {
		// SetNMI latches on a true->false transition, so each PPU NMI
		// is presented as a full pulse.
		b.CPU.SetNMI(true)
		b.CPU.SetNMI(false)
	})
	b.Memory.SetDMACallback(b.triggerOAMDMA)
	b.APU.SetMemory(b.Memory)
	b.APU.SetIRQCallback(func(state bool) {
		b.apuIRQ = state
		b.updateIRQLine()
	})
	b.APU.SetDMCStallCallback(func(cycles int) { b.CPU.Stall(cycles) })
}

// Reset resets all components to their power-on/reset state.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()

	b.cpuCycles = 0
	b.frameCount = 0
	b.dma = oamDMA{}
	b.apuIRQ = false
	b.cartIRQ = false
	b.lastScanline = -1

	b.wireCallbacks()
}

// LoadCartridge installs a cartridge and rebuilds the components that
// depend on it directly.
func (b *Bus) LoadCartridge(cart Cartridge) {
	b.cartridge = cart
	b.Memory.SetCartridge(cart)
	b.PPU.SetMemory(memory.NewPPUMemory(cart))
	b.Reset()
}

// triggerOAMDMA begins an OAM DMA transfer from the given CPU page.
// Called by Memory when $4014 is written.
func (b *Bus) triggerOAMDMA(page uint8) {
	if b.dma.active {
		return
	}
	b.dma = oamDMA{
		active:    true,
		page:      page,
		extraWait: b.cpuCycles%2 == 1,
	}
}

// stepOAMDMA advances the DMA state machine by one CPU cycle,
// freezing the CPU for the duration.
func (b *Bus) stepOAMDMA() {
	d := &b.dma
	d.cycle++

	if d.cycle == 1 {
		return
	}
	if d.extraWait && d.cycle == 2 {
		return
	}
	if !d.havePut {
		d.readValue = b.Memory.Read(uint16(d.page)<<8 | uint16(d.addr))
		d.havePut = true
		return
	}

	b.PPU.WriteOAM(d.addr, d.readValue)
	d.havePut = false
	d.addr++
	if d.addr == 0 {
		d.active = false
	}
}

// updateIRQLine combines the APU and mapper IRQ lines and presents a
// single level to the CPU.
func (b *Bus) updateIRQLine() {
	b.CPU.SetIRQ(b.apuIRQ || b.cartIRQ)
}

// Step runs exactly one CPU cycle and the PPU/APU cycles that
// accompany it, the base unit the rest of the emulator schedules on.
func (b *Bus) Step() {
	if b.dma.active {
		b.stepOAMDMA()
	} else {
		b.CPU.Step()
	}

	for i := 0; i < 3; i++ {
		b.PPU.Step()
	}
	b.APU.Step()

	b.pollMapperIRQ()

	b.cpuCycles++
	b.frameCount = b.PPU.GetFrameCount()
}

// pollMapperIRQ drives mapper scanline counters (MMC3 and similar)
// once per scanline boundary crossed while rendering is on, then
// folds the mapper's IRQ line into the CPU.
func (b *Bus) pollMapperIRQ() {
	scanline := b.PPU.GetScanline()
	if scanline == b.lastScanline {
		return
	}
	b.lastScanline = scanline

	if b.cartridge == nil || !b.PPU.RenderingEnabled() {
		return
	}
	if scanline < -1 || scanline > 239 {
		return
	}

	b.cartridge.OnScanline()

	pending := b.cartridge.IRQPending()
	if pending != b.cartIRQ {
		b.cartIRQ = pending
		b.updateIRQLine()
	}
}

// RunCycles runs the emulator for a specified number of CPU cycles.
func (b *Bus) RunCycles(cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		b.Step()
	}
}

// RunFrame runs the emulator until the PPU completes one more frame.
func (b *Bus) RunFrame() {
	target := b.PPU.GetFrameCount() + 1
	for b.PPU.GetFrameCount() < target {
		b.Step()
	}
}

// GetFrameBuffer returns the current PPU frame buffer.
func (b *Bus) GetFrameBuffer() [256 * 240]uint32 {
	return b.PPU.GetFrameBuffer()
}

// GetAudioSamples returns and drains the buffered audio samples.
func (b *Bus) GetAudioSamples() []float32 {
	return b.APU.GetSamples()
}

// GetCycleCount returns the number of CPU cycles elapsed since reset.
func (b *Bus) GetCycleCount() uint64 {
	return b.cpuCycles
}

// GetFrameCount returns the number of frames rendered since reset.
func (b *Bus) GetFrameCount() uint64 {
	return b.frameCount
}

// IsDMAInProgress reports whether an OAM DMA transfer is underway.
func (b *Bus) IsDMAInProgress() bool {
	return b.dma.active
}

// SetControllerButtons sets all eight button states for a controller
// port (1 or 2).
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}

// SetControllerButton sets a single button's state on a controller
// port (1 or 2).
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 1:
		b.Input.Controller1.SetButton(button, pressed)
	case 2:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

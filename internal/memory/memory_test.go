package memory

import (
	"testing"

	"nesgo/internal/cartridge"
)

type fakePPU struct {
	reads  []uint16
	writes map[uint16]uint8
}

func newFakePPU() *fakePPU { return &fakePPU{writes: map[uint16]uint8{}} }

func (p *fakePPU) ReadRegister(address uint16) uint8 {
	p.reads = append(p.reads, address)
	return 0x42
}

func (p *fakePPU) WriteRegister(address uint16, value uint8) {
	p.writes[address] = value
}

type fakeAPU struct {
	writes map[uint16]uint8
	status uint8
}

func newFakeAPU() *fakeAPU { return &fakeAPU{writes: map[uint16]uint8{}} }

func (a *fakeAPU) WriteRegister(address uint16, value uint8) { a.writes[address] = value }
func (a *fakeAPU) ReadStatus() uint8                          { return a.status }

type fakeInput struct {
	lastWrite uint8
}

func (f *fakeInput) Read(address uint16) uint8        { return 0x01 }
func (f *fakeInput) Write(address uint16, value uint8) { f.lastWrite = value }

func TestRAMMirroring(t *testing.T) {
	ppu, apu := newFakePPU(), newFakeAPU()
	mem := New(ppu, apu, nil)
	mem.Write(0x0000, 0xAB)
	if got := mem.Read(0x0800); got != 0xAB {
		t.Fatalf("expected RAM mirror to read 0xAB, got 0x%02X", got)
	}
	if got := mem.Read(0x1800); got != 0xAB {
		t.Fatalf("expected RAM mirror at 0x1800 to read 0xAB, got 0x%02X", got)
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	ppu, apu := newFakePPU(), newFakeAPU()
	mem := New(ppu, apu, nil)
	mem.Write(0x2000, 0x10)
	mem.Write(0x2008, 0x20) // mirrors to 0x2000
	if ppu.writes[0x2000] != 0x20 {
		t.Fatalf("expected mirrored write to reach register 0x2000, got 0x%02X", ppu.writes[0x2000])
	}
}

func TestControllerReadWrite(t *testing.T) {
	ppu, apu := newFakePPU(), newFakeAPU()
	mem := New(ppu, apu, nil)
	in := &fakeInput{}
	mem.SetInputSystem(in)
	mem.Write(0x4016, 0x01)
	if in.lastWrite != 0x01 {
		t.Fatalf("expected strobe write to reach input system")
	}
	if got := mem.Read(0x4016); got != 0x01 {
		t.Fatalf("expected controller read passthrough, got 0x%02X", got)
	}
}

func TestDMACallbackInvoked(t *testing.T) {
	ppu, apu := newFakePPU(), newFakeAPU()
	mem := New(ppu, apu, nil)
	var gotPage uint8
	mem.SetDMACallback(func(page uint8) { gotPage = page })
	mem.Write(0x4014, 0x07)
	if gotPage != 0x07 {
		t.Fatalf("expected DMA callback to receive page 0x07, got 0x%02X", gotPage)
	}
}

func TestPPUMemoryHorizontalMirroring(t *testing.T) {
	cart := cartridge.NewMockCartridge()
	cart.Mirror = cartridge.MirrorHorizontal
	pm := NewPPUMemory(cart)
	pm.Write(0x2000, 0x11)
	if got := pm.Read(0x2400); got != 0x11 {
		t.Fatalf("horizontal mirroring: expected 0x2400 to mirror 0x2000, got 0x%02X", got)
	}
	if got := pm.Read(0x2800); got == 0x11 {
		t.Fatalf("horizontal mirroring: expected 0x2800 to be a different bank")
	}
}

func TestPaletteMirroring(t *testing.T) {
	cart := cartridge.NewMockCartridge()
	pm := NewPPUMemory(cart)
	pm.Write(0x3F00, 0x05)
	if got := pm.Read(0x3F10); got != 0x05 {
		t.Fatalf("expected $3F10 to mirror $3F00, got 0x%02X", got)
	}
}

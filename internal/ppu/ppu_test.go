package ppu

import (
	"testing"

	"nesgo/internal/cartridge"
	"nesgo/internal/memory"
)

func newTestPPU() (*PPU, *memory.PPUMemory, *cartridge.MockCartridge) {
	cart := cartridge.NewMockCartridge()
	mem := memory.NewPPUMemory(cart)
	p := New()
	p.SetMemory(mem)
	return p, mem, cart
}

func stepScanlines(p *PPU, lines int) {
	for i := 0; i < lines*341; i++ {
		p.Step()
	}
}

func TestVBLSetsAtScanline241Cycle1(t *testing.T) {
	p, _, _ := newTestPPU()
	// Advance until the PPU reaches scanline 241, cycle 1.
	for !(p.scanline == 241 && p.cycle == 1) {
		p.Step()
	}
	if !p.IsVBlank() {
		t.Fatal("expected VBL flag set at scanline 241 cycle 1")
	}
}

func TestVBLClearsAtPreRenderCycle1(t *testing.T) {
	p, _, _ := newTestPPU()
	for !(p.scanline == 241 && p.cycle == 1) {
		p.Step()
	}
	for !(p.scanline == -1 && p.cycle == 1) {
		p.Step()
	}
	if p.IsVBlank() {
		t.Fatal("expected VBL flag cleared at pre-render scanline cycle 1")
	}
}

func TestReadingStatusClearsVBLAndLatch(t *testing.T) {
	p, _, _ := newTestPPU()
	p.ppuStatus |= 0x80
	p.w = true
	status := p.ReadRegister(0x2002)
	if status&0x80 == 0 {
		t.Fatal("expected read to return VBL set")
	}
	if p.IsVBlank() {
		t.Fatal("expected VBL cleared after read")
	}
	if p.w {
		t.Fatal("expected write latch cleared after status read")
	}
}

func TestPPUAddrWriteSequenceSetsV(t *testing.T) {
	p, _, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	if p.v != 0x2108 {
		t.Fatalf("expected v=0x2108, got 0x%04X", p.v)
	}
}

func TestPPUDataAutoIncrement(t *testing.T) {
	p, _, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0xAB)
	if p.v != 0x2001 {
		t.Fatalf("expected v incremented by 1, got 0x%04X", p.v)
	}
}

func TestPPUDataIncrementBy32WhenCtrlBitSet(t *testing.T) {
	p, _, _ := newTestPPU()
	p.WriteRegister(0x2000, 0x04)
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0xAB)
	if p.v != 0x2020 {
		t.Fatalf("expected v incremented by 32, got 0x%04X", p.v)
	}
}

func TestOAMWriteReadRoundTrip(t *testing.T) {
	p, _, _ := newTestPPU()
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0x55)
	if p.oam[0x10] != 0x55 {
		t.Fatalf("expected OAM[0x10]=0x55, got 0x%02X", p.oam[0x10])
	}
	p.oamAddr = 0x10
	if got := p.ReadRegister(0x2004); got != 0x55 {
		t.Fatalf("expected OAMDATA read 0x55, got 0x%02X", got)
	}
}

func TestSpriteOverflowFlagSetWithNinthSprite(t *testing.T) {
	p, _, _ := newTestPPU()
	p.WriteRegister(0x2001, 0x18) // enable bg + sprites
	for i := 0; i < 9; i++ {
		base := i * 4
		p.oam[base] = 10 // y such that scanline 11 hits it
		p.oam[base+1] = 0
		p.oam[base+2] = 0
		p.oam[base+3] = uint8(i * 8)
	}
	p.scanline = 10
	p.evaluateSprites()
	if !p.spriteOverflow {
		t.Fatal("expected sprite overflow with 9 sprites on one scanline")
	}
	if p.spriteCount != 8 {
		t.Fatalf("expected 8 sprites retained, got %d", p.spriteCount)
	}
}

func TestNMITriggeredOnVBLWhenEnabled(t *testing.T) {
	p, _, _ := newTestPPU()
	fired := false
	p.SetNMICallback(func() { fired = true })
	p.WriteRegister(0x2000, 0x80) // enable NMI on VBL
	for !(p.scanline == 241 && p.cycle == 1) {
		p.Step()
	}
	if !fired {
		t.Fatal("expected NMI callback on VBL with NMI enabled")
	}
}

func countDotsInFrame(p *PPU) int {
	startFrame := p.frameCount
	dots := 0
	for p.frameCount == startFrame {
		p.Step()
		dots++
	}
	return dots
}

func TestOddFrameSkipsADotOnlyWhileRenderingEnabled(t *testing.T) {
	p, _, _ := newTestPPU()

	// Rendering disabled: every frame is 89,342 dots, no parity skip.
	first := countDotsInFrame(p)
	second := countDotsInFrame(p)
	if first != 89342 || second != 89342 {
		t.Fatalf("expected 89342 dots per frame with rendering disabled, got %d then %d", first, second)
	}

	p.WriteRegister(0x2001, 0x18) // enable background + sprites
	withRendering := countDotsInFrame(p)
	withRenderingNext := countDotsInFrame(p)
	if withRendering == withRenderingNext {
		t.Fatalf("expected odd/even frame lengths to alternate once rendering is enabled, got %d and %d", withRendering, withRenderingNext)
	}
	for _, d := range []int{withRendering, withRenderingNext} {
		if d != 89341 && d != 89342 {
			t.Fatalf("expected frame length of 89341 or 89342 dots, got %d", d)
		}
	}
}

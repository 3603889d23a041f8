package cpu

import "testing"

func TestZeroPageXWrapsWithinPageZero(t *testing.T) {
	c, mem := newTestCPU([]uint8{0xA2, 0x01, 0xB5, 0xFF}, 0x8000)
	mem.data[0x00] = 0x99 // $FF + X(1) wraps to $00
	runInstruction(c)
	runInstruction(c)
	if c.A != 0x99 {
		t.Fatalf("zero-page,X wrap: A=%02X", c.A)
	}
}

func TestAbsoluteXPageCrossAddsCycle(t *testing.T) {
	c, mem := newTestCPU([]uint8{0xA2, 0x01, 0xBD, 0xFF, 0x20}, 0x8000)
	mem.data[0x2100] = 0x77
	runInstruction(c)
	c.Step()
	crossed := c.pendingCycles >= 4
	for c.pendingCycles > 0 {
		c.Step()
	}
	if !crossed {
		t.Fatal("expected page-cross penalty on absolute,X read")
	}
	if c.A != 0x77 {
		t.Fatalf("absolute,X: A=%02X", c.A)
	}
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	mem := newTestMemory()
	mem.data[0x30FF] = 0x00
	mem.data[0x3000] = 0x90 // bugged high byte read from $3000, not $3100
	mem.loadResetVector(0x8000)
	mem.data[0x8000] = 0x6C // JMP ($30FF)
	mem.data[0x8001] = 0xFF
	mem.data[0x8002] = 0x30
	c := New(mem)
	c.Reset()
	for c.Stalled() {
		c.Step()
	}
	runInstruction(c)
	if c.PC != 0x9000 {
		t.Fatalf("expected buggy indirect JMP to $9000, got %04X", c.PC)
	}
}

func TestIndirectIndexedCrossesPage(t *testing.T) {
	mem := newTestMemory()
	mem.data[0x10] = 0xFF
	mem.data[0x11] = 0x20
	mem.data[0x2100] = 0x55
	mem.loadResetVector(0x8000)
	mem.data[0x8000] = 0xA0 // LDY #1
	mem.data[0x8001] = 0x01
	mem.data[0x8002] = 0xB1 // LDA ($10),Y
	mem.data[0x8003] = 0x10
	c := New(mem)
	c.Reset()
	for c.Stalled() {
		c.Step()
	}
	runInstruction(c)
	runInstruction(c)
	if c.A != 0x55 {
		t.Fatalf("(zp),Y: A=%02X", c.A)
	}
}

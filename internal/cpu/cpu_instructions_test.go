package cpu

import "testing"

func TestLDAImmediateSetsRegisterAndFlags(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0x00}, 0x8000)
	runInstruction(c)
	if c.A != 0 || !c.Z || c.N {
		t.Fatalf("LDA #$00: A=%02X Z=%v N=%v", c.A, c.Z, c.N)
	}
}

func TestLDANegativeFlag(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0x80}, 0x8000)
	runInstruction(c)
	if c.A != 0x80 || !c.N || c.Z {
		t.Fatalf("LDA #$80: A=%02X N=%v Z=%v", c.A, c.N, c.Z)
	}
}

func TestSTAAbsolute(t *testing.T) {
	c, mem := newTestCPU([]uint8{0xA9, 0x42, 0x8D, 0x00, 0x03}, 0x8000)
	runInstruction(c)
	runInstruction(c)
	if mem.data[0x0300] != 0x42 {
		t.Fatalf("expected 0x42 stored at $0300, got %02X", mem.data[0x0300])
	}
}

func TestADCSetsCarryAndOverflow(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0x7F, 0x69, 0x01}, 0x8000)
	runInstruction(c)
	runInstruction(c)
	if c.A != 0x80 || !c.V || c.C {
		t.Fatalf("ADC overflow: A=%02X V=%v C=%v", c.A, c.V, c.C)
	}
}

func TestSBCBorrow(t *testing.T) {
	c, _ := newTestCPU([]uint8{0x38, 0xA9, 0x00, 0xE9, 0x01}, 0x8000)
	runInstruction(c) // SEC
	runInstruction(c) // LDA #0
	runInstruction(c) // SBC #1
	if c.A != 0xFF || c.C {
		t.Fatalf("SBC borrow: A=%02X C=%v", c.A, c.C)
	}
}

func TestANDMasksAccumulator(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0xFF, 0x29, 0x0F}, 0x8000)
	runInstruction(c)
	runInstruction(c)
	if c.A != 0x0F {
		t.Fatalf("AND: A=%02X", c.A)
	}
}

func TestINXWrapsAndSetsZero(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA2, 0xFF, 0xE8}, 0x8000)
	runInstruction(c)
	runInstruction(c)
	if c.X != 0 || !c.Z {
		t.Fatalf("INX wrap: X=%02X Z=%v", c.X, c.Z)
	}
}

func TestJSRAndRTSRoundTrip(t *testing.T) {
	c, _ := newTestCPU([]uint8{0x20, 0x05, 0x80, 0xEA, 0xEA, 0x60}, 0x8000)
	runInstruction(c) // JSR $8005
	if c.PC != 0x8005 {
		t.Fatalf("expected PC=$8005 after JSR, got %04X", c.PC)
	}
	runInstruction(c) // RTS
	if c.PC != 0x8003 {
		t.Fatalf("expected PC=$8003 after RTS, got %04X", c.PC)
	}
}

func TestBranchTakenAddsCycle(t *testing.T) {
	c, _ := newTestCPU([]uint8{0x18, 0x90, 0x02}, 0x8000) // CLC; BCC +2
	runInstruction(c)
	c.Step()
	if c.pendingCycles == 0 {
		t.Fatal("expected at least one pending cycle for branch")
	}
	for c.pendingCycles > 0 {
		c.Step()
	}
	if c.PC != 0x8005 {
		t.Fatalf("expected branch taken to $8005, got %04X", c.PC)
	}
}

func TestLAXUnofficialLoadsBothRegisters(t *testing.T) {
	mem := newTestMemory()
	mem.data[0x10] = 0x55
	mem.loadResetVector(0x8000)
	mem.data[0x8000] = 0xA7 // LAX zp
	mem.data[0x8001] = 0x10
	c := New(mem)
	c.Reset()
	for c.Stalled() {
		c.Step()
	}
	runInstruction(c)
	if c.A != 0x55 || c.X != 0x55 {
		t.Fatalf("LAX: A=%02X X=%02X", c.A, c.X)
	}
}

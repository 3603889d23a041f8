package cpu

import "testing"

func TestStatusByteRoundTrip(t *testing.T) {
	c, _ := newTestCPU(nil, 0x8000)
	c.N, c.V, c.D, c.I, c.Z, c.C = true, true, true, false, true, true
	s := c.GetStatusByte(false)
	var other CPU
	other.SetStatusByte(s)
	if other.N != c.N || other.V != c.V || other.D != c.D || other.I != c.I || other.Z != c.Z || other.C != c.C {
		t.Fatalf("status byte round trip mismatch: got %08b", s)
	}
}

func TestGetStatusByteAlwaysSetsBit5(t *testing.T) {
	c, _ := newTestCPU(nil, 0x8000)
	s := c.GetStatusByte(false)
	if s&0x20 == 0 {
		t.Fatal("expected unused bit 5 always set")
	}
}

func TestBRKSetsBreakBitOnStack(t *testing.T) {
	c, mem := newTestCPU([]uint8{0x00}, 0x8000)
	mem.data[0xFFFE] = 0x00
	mem.data[0xFFFF] = 0x90
	sp := c.SP
	runInstruction(c)
	pushed := mem.data[0x0100+uint16(sp-2)] // status follows PC high and PC low
	if pushed&0x10 == 0 {
		t.Fatalf("expected B flag set in pushed status, got %08b", pushed)
	}
}

func TestCompareSetsCarryWhenRegisterGreaterOrEqual(t *testing.T) {
	c, _ := newTestCPU([]uint8{0xA9, 0x10, 0xC9, 0x10}, 0x8000)
	runInstruction(c)
	runInstruction(c)
	if !c.C || !c.Z {
		t.Fatalf("CMP equal: C=%v Z=%v", c.C, c.Z)
	}
}

package cpu

type testMemory struct {
	data [0x10000]uint8
}

func newTestMemory() *testMemory { return &testMemory{} }

func (m *testMemory) Read(address uint16) uint8        { return m.data[address] }
func (m *testMemory) Write(address uint16, value uint8) { m.data[address] = value }

func (m *testMemory) loadResetVector(addr uint16) {
	m.data[0xFFFC] = uint8(addr & 0xFF)
	m.data[0xFFFD] = uint8(addr >> 8)
}

func newTestCPU(program []uint8, at uint16) (*CPU, *testMemory) {
	mem := newTestMemory()
	copy(mem.data[at:], program)
	mem.loadResetVector(at)
	c := New(mem)
	c.Reset()
	for c.Stalled() {
		c.Step()
	}
	return c, mem
}

func runInstruction(c *CPU) {
	// Step once to fetch+execute, then drain any banked cycles.
	c.Step()
	for c.pendingCycles > 0 {
		c.Step()
	}
}

package cartridge

// axrom implements mapper 7 (AxROM): a single 32 KiB switchable PRG
// bank and single-screen mirroring selected by bit 4 of the bank
// register. Grounded on original_source/mapper7.rs.
type axrom struct {
	cart       *Cartridge
	prgBanks32 int
	bankSelect uint8
}

func newAxROM(cart *Cartridge) *axrom {
	banks := len(cart.prgROM) / 0x8000
	if banks == 0 {
		banks = 1
	}
	return &axrom{cart: cart, prgBanks32: banks}
}

func (m *axrom) MapCPU(address uint16) (int, bool) {
	if address < 0x8000 {
		return -1, false
	}
	bank := int(m.bankSelect&0x0F) % m.prgBanks32
	return bank*0x8000 + int(address-0x8000), false
}

func (m *axrom) MapPPU(address uint16) int { return int(address) }

func (m *axrom) WriteCPU(address uint16, value uint8) {
	if address >= 0x8000 {
		m.bankSelect = value
	}
}

func (m *axrom) Mirroring() MirrorMode {
	if m.bankSelect&0x10 != 0 {
		return MirrorSingleScreen1
	}
	return MirrorSingleScreen0
}

func (m *axrom) OnScanline() {}

func (m *axrom) IRQPending() bool { return false }

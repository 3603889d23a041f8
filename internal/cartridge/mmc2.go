package cartridge

// mmc2 implements mapper 9 (MMC2/PxROM), notably used by Punch-Out!!.
// PRG is a single switchable 8 KiB bank at $8000-$9FFF with the top
// three 8 KiB banks fixed. CHR is split into two 4 KiB halves, each
// with two programmed banks (for tile indices $FD and $FE); which
// bank is active is chosen by a per-half latch that flips whenever
// the PPU fetches pattern data for tile $FD or $FE in that half. This
// is the defining MMC2 mechanic; original_source's retrieved snapshot
// writes the bank-select registers but never reads them back in
// address translation, so the latch switch here is built from
// documented MMC2 hardware behavior.
type mmc2 struct {
	cart *Cartridge

	prgBank uint8 // 8 KiB bank at $8000-$9FFF

	chr0FD uint8
	chr0FE uint8
	chr1FD uint8
	chr1FE uint8

	latch0 uint8 // 0xFD or 0xFE, selects $0000-$0FFF bank
	latch1 uint8 // 0xFD or 0xFE, selects $1000-$1FFF bank

	mirroring uint8 // 0 = vertical, 1 = horizontal

	prgBanks8 int
	chrBanks4 int
}

func newMMC2(cart *Cartridge) *mmc2 {
	prgBanks := prgBanks8k(cart)
	if prgBanks == 0 {
		prgBanks = 1
	}
	chrBanks := chrBanks4k(cart)
	if chrBanks == 0 {
		chrBanks = 1
	}
	return &mmc2{cart: cart, prgBanks8: prgBanks, chrBanks4: chrBanks, latch0: 0xFE, latch1: 0xFE}
}

func (m *mmc2) MapCPU(address uint16) (int, bool) {
	if address >= 0x6000 && address < 0x8000 {
		return int(address - 0x6000), true
	}
	switch {
	case address >= 0x8000 && address < 0xA000:
		bank := int(m.prgBank) % m.prgBanks8
		return bank*0x2000 + int(address-0x8000), false
	case address >= 0xA000 && address < 0xC000:
		bank := (m.prgBanks8 - 3 + m.prgBanks8) % m.prgBanks8
		return bank*0x2000 + int(address-0xA000), false
	case address >= 0xC000 && address < 0xE000:
		bank := (m.prgBanks8 - 2 + m.prgBanks8) % m.prgBanks8
		return bank*0x2000 + int(address-0xC000), false
	case address >= 0xE000:
		bank := (m.prgBanks8 - 1 + m.prgBanks8) % m.prgBanks8
		return bank*0x2000 + int(address-0xE000), false
	}
	return -1, false
}

func (m *mmc2) MapPPU(address uint16) int {
	var bank uint8
	var offset int
	if address < 0x1000 {
		if m.latch0 == 0xFD {
			bank = m.chr0FD
		} else {
			bank = m.chr0FE
		}
		offset = int(address)
	} else {
		if m.latch1 == 0xFD {
			bank = m.chr1FD
		} else {
			bank = m.chr1FE
		}
		offset = int(address - 0x1000)
	}

	m.updateLatch(address)

	b := int(bank) % m.chrBanks4
	return b*0x1000 + offset
}

// updateLatch flips the per-half latch when the PPU fetches the tile
// data for index $FD or $FE within that half; the triggering fetch
// addresses are the upper bitplane (last eight bytes) of the 16-byte
// tile pattern for those indices ($xFD8-$xFDF and $xFE8-$xFEF).
func (m *mmc2) updateLatch(address uint16) {
	switch {
	case address >= 0x0FD8 && address <= 0x0FDF:
		m.latch0 = 0xFD
	case address >= 0x0FE8 && address <= 0x0FEF:
		m.latch0 = 0xFE
	case address >= 0x1FD8 && address <= 0x1FDF:
		m.latch1 = 0xFD
	case address >= 0x1FE8 && address <= 0x1FEF:
		m.latch1 = 0xFE
	}
}

func (m *mmc2) WriteCPU(address uint16, value uint8) {
	switch {
	case address >= 0xA000 && address < 0xB000:
		m.prgBank = value & 0x0F
	case address >= 0xB000 && address < 0xC000:
		m.chr0FD = value & 0x1F
	case address >= 0xC000 && address < 0xD000:
		m.chr0FE = value & 0x1F
	case address >= 0xD000 && address < 0xE000:
		m.chr1FD = value & 0x1F
	case address >= 0xE000 && address < 0xF000:
		m.chr1FE = value & 0x1F
	case address >= 0xF000:
		m.mirroring = value & 0x01
	}
}

func (m *mmc2) Mirroring() MirrorMode {
	if m.mirroring == 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

func (m *mmc2) OnScanline() {}

func (m *mmc2) IRQPending() bool { return false }

// Package ppu implements the 2C02 Picture Processing Unit.
package ppu

import "nesgo/internal/memory"

// PPU represents the NES Picture Processing Unit (2C02).
type PPU struct {
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address (15 bits)
	x uint8  // fine X scroll (3 bits)
	w bool   // write toggle

	memory *memory.PPUMemory

	scanline   int
	cycle      int
	frameCount uint64
	oddFrame   bool
	readBuffer uint8

	oam          [256]uint8
	secondaryOAM [8]spriteEntry
	spriteCount  uint8
	sprite0InSecondary bool

	sprites [8]spriteUnit

	sprite0Hit     bool
	spriteOverflow bool

	bgNextTileID   uint8
	bgNextAttr     uint8
	bgNextPatLo    uint8
	bgNextPatHi    uint8
	bgShiftPatLo   uint16
	bgShiftPatHi   uint16
	bgShiftAttrLo  uint16
	bgShiftAttrHi  uint16

	frameBuffer [256 * 240]uint32

	nmiCallback           func()
	frameCompleteCallback func()

	backgroundEnabled bool
	spritesEnabled    bool
	renderingEnabled  bool

	cycleCount uint64
}

type spriteEntry struct {
	y, tile, attr, x uint8
}

type spriteUnit struct {
	patternLo, patternHi uint8
	attributes           uint8
	x                    uint8
	isSprite0            bool
	active               bool
}

// New creates a PPU positioned at the pre-render scanline.
func New() *PPU {
	return &PPU{scanline: -1}
}

// Reset restores power-on state.
func (p *PPU) Reset() {
	*p = PPU{scanline: -1, memory: p.memory, nmiCallback: p.nmiCallback, frameCompleteCallback: p.frameCompleteCallback}
}

// SetMemory binds the PPU's view of VRAM/CHR/palette space.
func (p *PPU) SetMemory(mem *memory.PPUMemory) {
	p.memory = mem
}

// SetNMICallback sets the callback invoked when VBL NMI fires.
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetFrameCompleteCallback sets the callback invoked once per finished frame.
func (p *PPU) SetFrameCompleteCallback(callback func()) {
	p.frameCompleteCallback = callback
}

// ReadRegister reads from a CPU-visible PPU register ($2000-$2007).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		status := p.ppuStatus
		p.ppuStatus &= 0x7F // clear VBL on read
		p.w = false
		return status
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		return p.readPPUData()
	default:
		return p.ppuStatus & 0x1F
	}
}

// WriteRegister writes to a CPU-visible PPU register ($2000-$2007).
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x2000:
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
		p.checkNMI()
	case 0x2001:
		p.ppuMask = value
		p.updateRenderingFlags()
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		p.writePPUScroll(value)
	case 0x2006:
		p.writePPUAddr(value)
	case 0x2007:
		p.writePPUData(value)
	}
}

// WriteOAM writes to OAM directly, used by OAM DMA.
func (p *PPU) WriteOAM(address uint8, value uint8) {
	p.oam[address] = value
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	p.cycleCount++

	if p.scanline >= -1 && p.scanline < 240 {
		p.renderingCycle()
	}

	p.cycle++
	if p.scanline == -1 && p.cycle == 340 && p.oddFrame && p.renderingEnabled {
		// Odd-frame dot skip: the pre-render scanline drops its last
		// dot when rendering is on, so the frame is 89,341 master
		// ticks instead of 89,342.
		p.cycle = 341
	}
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frameCount++
			p.oddFrame = !p.oddFrame
			if p.frameCompleteCallback != nil {
				p.frameCompleteCallback()
			}
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.ppuStatus |= 0x80
		if p.ppuCtrl&0x80 != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}

	if p.scanline == -1 && p.cycle == 1 {
		p.ppuStatus &= 0x1F // clear VBL, sprite0hit, sprite overflow
		p.sprite0Hit = false
		p.spriteOverflow = false
	}
}

// renderingCycle runs the background fetch/shift pipeline and sprite
// evaluation for the pre-render and visible scanlines.
func (p *PPU) renderingCycle() {
	if !p.renderingEnabled {
		if p.cycle >= 1 && p.cycle <= 256 && p.scanline >= 0 {
			p.emitBackdropPixel()
		}
		return
	}

	fetchCycle := (p.cycle >= 1 && p.cycle <= 256) || (p.cycle >= 321 && p.cycle <= 336)
	if fetchCycle {
		p.shiftBackgroundRegisters()
		switch p.cycle % 8 {
		case 1:
			p.loadBackgroundShiftRegisters()
			p.bgNextTileID = p.fetchNametableByte()
		case 3:
			p.bgNextAttr = p.fetchAttributeByte()
		case 5:
			p.bgNextPatLo = p.fetchPatternByte(false)
		case 7:
			p.bgNextPatHi = p.fetchPatternByte(true)
		case 0:
			p.incrementCoarseX()
		}
	}

	if p.cycle == 256 {
		p.incrementY()
	}
	if p.cycle == 257 {
		p.copyX()
		p.evaluateSprites()
	}
	if p.scanline == -1 && p.cycle >= 280 && p.cycle <= 304 {
		p.copyY()
	}

	if p.cycle >= 1 && p.cycle <= 256 && p.scanline >= 0 {
		p.renderPixel()
	}
	if p.cycle >= 2 && p.cycle <= 257 {
		p.tickSpriteShifters()
	}
}

func (p *PPU) fetchNametableByte() uint8 {
	addr := 0x2000 | (p.v & 0x0FFF)
	return p.memory.Read(addr)
}

func (p *PPU) fetchAttributeByte() uint8 {
	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attr := p.memory.Read(addr)
	if (p.v>>4)&1 != 0 {
		attr >>= 4
	}
	if (p.v>>1)&1 != 0 {
		attr >>= 2
	}
	return attr & 0x03
}

func (p *PPU) fetchPatternByte(high bool) uint8 {
	var base uint16
	if p.ppuCtrl&0x10 != 0 {
		base = 0x1000
	}
	fineY := (p.v >> 12) & 0x07
	addr := base + uint16(p.bgNextTileID)*16 + fineY
	if high {
		addr += 8
	}
	return p.memory.Read(addr)
}

func (p *PPU) loadBackgroundShiftRegisters() {
	p.bgShiftPatLo = (p.bgShiftPatLo & 0xFF00) | uint16(p.bgNextPatLo)
	p.bgShiftPatHi = (p.bgShiftPatHi & 0xFF00) | uint16(p.bgNextPatHi)
	var lo, hi uint16
	if p.bgNextAttr&0x01 != 0 {
		lo = 0xFF
	}
	if p.bgNextAttr&0x02 != 0 {
		hi = 0xFF
	}
	p.bgShiftAttrLo = (p.bgShiftAttrLo & 0xFF00) | lo
	p.bgShiftAttrHi = (p.bgShiftAttrHi & 0xFF00) | hi
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgShiftPatLo <<= 1
	p.bgShiftPatHi <<= 1
	p.bgShiftAttrLo <<= 1
	p.bgShiftAttrHi <<= 1
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &= ^uint16(0x001F)
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &= ^uint16(0x7000)
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

func (p *PPU) renderPixel() {
	pixelX := p.cycle - 1
	pixelY := p.scanline

	bgColorIndex, bgPaletteIndex := uint8(0), uint8(0)
	if p.backgroundEnabled && !(pixelX < 8 && p.ppuMask&0x02 == 0) {
		mux := uint16(0x8000) >> p.x
		bit0 := uint8(0)
		if p.bgShiftPatLo&mux != 0 {
			bit0 = 1
		}
		bit1 := uint8(0)
		if p.bgShiftPatHi&mux != 0 {
			bit1 = 1
		}
		bgColorIndex = (bit1 << 1) | bit0

		pal0 := uint8(0)
		if p.bgShiftAttrLo&mux != 0 {
			pal0 = 1
		}
		pal1 := uint8(0)
		if p.bgShiftAttrHi&mux != 0 {
			pal1 = 1
		}
		bgPaletteIndex = (pal1 << 1) | pal0
	}

	spColorIndex, spPaletteIndex, spPriority, spIsSprite0, spFound := p.activeSpritePixel(pixelX)
	if p.spritesEnabled && pixelX < 8 && p.ppuMask&0x04 == 0 {
		spFound = false
	}

	if spFound && bgColorIndex != 0 && spColorIndex != 0 && spIsSprite0 && pixelX != 255 {
		p.sprite0Hit = true
		p.ppuStatus |= 0x40
	}

	var nesColor uint8
	switch {
	case bgColorIndex == 0 && (!spFound || spColorIndex == 0):
		nesColor = p.memory.Read(0x3F00)
	case (bgColorIndex == 0) || (spFound && spColorIndex != 0 && !spPriority):
		if spFound && spColorIndex != 0 {
			nesColor = p.memory.Read(0x3F10 + uint16(spPaletteIndex)*4 + uint16(spColorIndex))
		} else {
			nesColor = p.memory.Read(0x3F00 + uint16(bgPaletteIndex)*4 + uint16(bgColorIndex))
		}
	default:
		nesColor = p.memory.Read(0x3F00 + uint16(bgPaletteIndex)*4 + uint16(bgColorIndex))
	}

	p.frameBuffer[pixelY*256+pixelX] = NESColorToRGB(nesColor)
}

func (p *PPU) emitBackdropPixel() {
	pixelX := p.cycle - 1
	pixelY := p.scanline
	if pixelX < 0 || pixelX >= 256 || pixelY < 0 {
		return
	}
	var nesColor uint8
	if p.memory != nil {
		nesColor = p.memory.Read(0x3F00)
	}
	p.frameBuffer[pixelY*256+pixelX] = NESColorToRGB(nesColor)
}

// spriteHeight returns 8 or 16 depending on PPUCTRL bit 5.
func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&0x20 != 0 {
		return 16
	}
	return 8
}

// evaluateSprites scans primary OAM for sprites visible on the next
// scanline, filling secondary OAM (max 8) and flagging overflow.
func (p *PPU) evaluateSprites() {
	p.spriteCount = 0
	p.sprite0InSecondary = false
	targetLine := p.scanline + 1
	height := p.spriteHeight()

	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = spriteEntry{y: 0xFF}
	}

	found := 0
	for i := 0; i < 64; i++ {
		base := i * 4
		y := int(p.oam[base])
		if targetLine >= y+1 && targetLine < y+1+height {
			if found < 8 {
				p.secondaryOAM[found] = spriteEntry{
					y:    p.oam[base],
					tile: p.oam[base+1],
					attr: p.oam[base+2],
					x:    p.oam[base+3],
				}
				if i == 0 {
					p.sprite0InSecondary = true
				}
				found++
			} else {
				p.spriteOverflow = true
				p.ppuStatus |= 0x20
				break
			}
		}
	}
	p.spriteCount = uint8(found)
	p.loadSpriteShiftRegisters(targetLine)
}

func (p *PPU) loadSpriteShiftRegisters(targetLine int) {
	height := p.spriteHeight()
	for i := range p.sprites {
		p.sprites[i] = spriteUnit{}
	}
	for i := 0; i < int(p.spriteCount); i++ {
		entry := p.secondaryOAM[i]
		row := targetLine - (int(entry.y) + 1)
		tile := entry.tile

		var base uint16
		if height == 16 {
			if tile&0x01 != 0 {
				base = 0x1000
			}
			tile &= 0xFE
			if row >= 8 {
				tile++
				row -= 8
			}
		} else if p.ppuCtrl&0x08 != 0 {
			base = 0x1000
		}

		if entry.attr&0x80 != 0 {
			row = height - 1 - row
		}
		if row < 0 {
			row = 0
		}

		addr := base + uint16(tile)*16 + uint16(row)
		lo := p.memory.Read(addr)
		hi := p.memory.Read(addr + 8)
		if entry.attr&0x40 != 0 {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.sprites[i] = spriteUnit{
			patternLo:  lo,
			patternHi:  hi,
			attributes: entry.attr,
			x:          entry.x,
			isSprite0:  i == 0 && p.sprite0InSecondary,
			active:     true,
		}
	}
}

func (p *PPU) tickSpriteShifters() {
	for i := range p.sprites {
		s := &p.sprites[i]
		if !s.active {
			continue
		}
		if s.x > 0 {
			s.x--
			continue
		}
		s.patternLo <<= 1
		s.patternHi <<= 1
	}
}

func (p *PPU) activeSpritePixel(pixelX int) (colorIndex, paletteIndex uint8, priority bool, isSprite0 bool, found bool) {
	if !p.spritesEnabled {
		return
	}
	for i := range p.sprites {
		s := &p.sprites[i]
		if !s.active || s.x != 0 {
			continue
		}
		bit0 := (s.patternLo & 0x80) >> 7
		bit1 := (s.patternHi & 0x80) >> 7
		idx := (bit1 << 1) | bit0
		if idx == 0 {
			continue
		}
		return idx, s.attributes & 0x03, s.attributes&0x20 != 0, s.isSprite0, true
	}
	return
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

func (p *PPU) updateRenderingFlags() {
	p.backgroundEnabled = p.ppuMask&0x08 != 0
	p.spritesEnabled = p.ppuMask&0x10 != 0
	p.renderingEnabled = p.backgroundEnabled || p.spritesEnabled
}

func (p *PPU) checkNMI() {
	if p.ppuCtrl&0x80 != 0 && p.ppuStatus&0x80 != 0 && p.nmiCallback != nil {
		p.nmiCallback()
	}
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
		p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) readPPUData() uint8 {
	var data uint8
	if p.memory == nil {
		return 0
	}
	if p.v >= 0x3F00 {
		data = p.memory.Read(p.v)
		p.readBuffer = p.memory.Read(p.v & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.memory.Read(p.v)
	}
	p.advanceVRAMAddress()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	if p.memory != nil {
		p.memory.Write(p.v, value)
	}
	p.advanceVRAMAddress()
}

func (p *PPU) advanceVRAMAddress() {
	if p.ppuCtrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x3FFF
}

// GetFrameBuffer returns the current frame buffer.
func (p *PPU) GetFrameBuffer() [256 * 240]uint32 {
	return p.frameBuffer
}

// GetFrameCount returns the number of frames rendered since reset.
func (p *PPU) GetFrameCount() uint64 {
	return p.frameCount
}

// GetScanline returns the current scanline (-1 is pre-render).
func (p *PPU) GetScanline() int {
	return p.scanline
}

// GetCycle returns the current dot within the scanline.
func (p *PPU) GetCycle() int {
	return p.cycle
}

// RenderingEnabled reports whether background or sprite rendering is
// currently turned on via PPUMASK.
func (p *PPU) RenderingEnabled() bool {
	return p.renderingEnabled
}

// IsVBlank reports whether the VBL flag is currently set.
func (p *PPU) IsVBlank() bool {
	return p.ppuStatus&0x80 != 0
}

// NES 2C02 NTSC palette.
var nesColorPalette = [64]uint32{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFF29B, 0xFFBEFBB3, 0xFFB8F8D8, 0xFFB8F8F8, 0xFF000000, 0xFF000000, 0xFF000000,
}

// NESColorToRGB converts a 6-bit NES color index to an RGB value.
func NESColorToRGB(colorIndex uint8) uint32 {
	if colorIndex >= 64 {
		return 0
	}
	return nesColorPalette[colorIndex] & 0x00FFFFFF
}

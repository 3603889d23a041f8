// Package input implements standard NES controller handling.
package input

// Button identifies a single controller button. Bit positions match
// the order the hardware shift register reports them in: A is read
// last (bit 7 of the snapshot, first serial bit out is Right).
type Button uint8

const (
	ButtonRight Button = 1 << iota
	ButtonLeft
	ButtonDown
	ButtonUp
	ButtonStart
	ButtonSelect
	ButtonB
	ButtonA
)

// Convenience aliases.
const (
	Right  = ButtonRight
	Left   = ButtonLeft
	Down   = ButtonDown
	Up     = ButtonUp
	Start  = ButtonStart
	Select = ButtonSelect
	B      = ButtonB
	A      = ButtonA
)

// Controller models one standard NES controller's strobe/shift
// register protocol: while strobe is high, reads always return the
// A-button state; on the strobe's falling edge, the current button
// state latches into an 8-bit shift register that serializes one bit
// per subsequent read, then reads as 1 past the eighth bit.
type Controller struct {
	buttons uint8

	shiftRegister uint8
	strobe        bool
	bitsRead      uint8
}

// New creates a Controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button's state.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all eight buttons at once, in Right/Left/Down/Up/
// Start/Select/B/A order.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	order := [8]Button{ButtonRight, ButtonLeft, ButtonDown, ButtonUp, ButtonStart, ButtonSelect, ButtonB, ButtonA}
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= uint8(order[i])
		}
	}
}

// IsPressed reports whether a button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles a write to $4016: bit 0 is the strobe line.
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = value&1 != 0

	if c.strobe {
		c.shiftRegister = c.buttons
		c.bitsRead = 0
	} else if wasStrobe {
		c.shiftRegister = c.buttons
		c.bitsRead = 0
	}
}

// Read serializes the next button bit, or 1 once all 8 bits have
// been read (open-bus behavior real hardware and most emulators
// model as a constant 1).
func (c *Controller) Read() uint8 {
	if c.strobe {
		return (c.buttons >> 7) & 1
	}

	if c.bitsRead >= 8 {
		return 1
	}

	bit := c.shiftRegister & 1
	c.shiftRegister >>= 1
	c.bitsRead++
	return bit
}

// Reset clears all controller state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
	c.bitsRead = 0
}

// InputState wires both controller ports into the CPU's $4016/$4017
// register space.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a fresh pair of controllers.
func NewInputState() *InputState {
	return &InputState{Controller1: New(), Controller2: New()}
}

// Reset resets both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets controller 1's button state.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets controller 2's button state.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// Read reads from a controller port ($4016 or $4017). Bit 6 reads
// back as 1, matching open-bus behavior on hardware; the other upper
// bits read as 0.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read() | 0x40
	case 0x4017:
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write writes to $4016; the strobe line reaches both controller ports.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}

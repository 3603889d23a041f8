package input

import "testing"

func TestButtonBitOrderMatchesHardwareShiftOrder(t *testing.T) {
	c := New()
	c.SetButton(ButtonRight, true)
	if c.buttons != 0x01 {
		t.Fatalf("expected Right at bit 0, got 0x%02X", c.buttons)
	}
	c.Reset()
	c.SetButton(ButtonA, true)
	if c.buttons != 0x80 {
		t.Fatalf("expected A at bit 7, got 0x%02X", c.buttons)
	}
}

func TestStrobeHighAlwaysReadsAButton(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonRight, true)
	c.Write(0x01)
	for i := 0; i < 3; i++ {
		if got := c.Read(); got != 1 {
			t.Fatalf("expected strobe-high read to return A button state 1, got %d", got)
		}
	}
}

func TestShiftRegisterSerializesInRightToAOrder(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, false, true, false, false, false, false, true})
	c.Write(0x01)
	c.Write(0x00)

	want := []uint8{1, 0, 1, 0, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("bit %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestReadPastEighthBitReturnsOne(t *testing.T) {
	c := New()
	c.Write(0x01)
	c.Write(0x00)
	for i := 0; i < 8; i++ {
		c.Read()
	}
	if got := c.Read(); got != 1 {
		t.Fatalf("expected 1 after exhausting shift register, got %d", got)
	}
}

func TestInputStateDispatchesToCorrectPort(t *testing.T) {
	is := NewInputState()
	is.SetButtons1([8]bool{true, false, false, false, false, false, false, false})
	is.SetButtons2([8]bool{false, true, false, false, false, false, false, false})
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)

	if got := is.Read(0x4016); got&0x01 != 1 {
		t.Fatalf("expected controller 1 Right bit set, got 0x%02X", got)
	}
	if got := is.Read(0x4017); got&0x01 != 0 {
		t.Fatalf("expected controller 2 Right bit clear, got 0x%02X", got)
	}
}

func TestOpenBusBitSetOnBothPorts(t *testing.T) {
	is := NewInputState()
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)
	if got := is.Read(0x4016); got&0x40 == 0 {
		t.Fatal("expected open-bus bit 0x40 set on $4016 reads")
	}
	if got := is.Read(0x4017); got&0x40 == 0 {
		t.Fatal("expected open-bus bit 0x40 set on $4017 reads")
	}
}

func TestStrobeBroadcastsToBothControllers(t *testing.T) {
	is := NewInputState()
	is.Write(0x4016, 0x01)
	if !is.Controller1.strobe || !is.Controller2.strobe {
		t.Fatal("expected strobe write on $4016 to reach both controller ports")
	}
}

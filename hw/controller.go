package hw

// Button indices of the standard controller, in report order.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller implements the strobe-then-shift protocol of the standard
// controller port. While the strobe bit is high the shift register follows
// the live button state; once it goes low, each read shifts out one button
// bit. Reads past the 8th return 1.
type Controller struct {
	buttons uint8 // live state, one bit per Button
	latched uint8
	index   uint8
	strobe  bool
}

func NewController() *Controller {
	return &Controller{}
}

// SetButton updates the live state of a single button.
func (c *Controller) SetButton(b Button, pressed bool) {
	if pressed {
		c.buttons |= 1 << b
	} else {
		c.buttons &^= 1 << b
	}
}

// SetButtons replaces the whole live state, one bit per Button.
func (c *Controller) SetButtons(state uint8) {
	c.buttons = state
}

func (c *Controller) WriteStrobe(val uint8) {
	strobe := val&0x01 != 0
	if c.strobe && !strobe {
		c.latched = c.buttons
		c.index = 0
	}
	c.strobe = strobe
}

// Read returns the next serial bit in the low bit. The caller composes the
// open bus value into the upper bits.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.latched = c.buttons
		c.index = 0
		return c.buttons & 0x01
	}
	if c.index >= 8 {
		return 0x01
	}
	val := c.latched >> c.index & 0x01
	c.index++
	return val
}

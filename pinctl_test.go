package pinctl

// Unit tests for the host. Each test builds a new MockDriver so it starts
// from the same uninitialised state.

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T) (*Host, *MockDriver) {
	t.Helper()
	driver := NewMockDriver()
	h, err := NewHost(driver, nil)
	require.NoError(t, err)
	return h, driver
}

// Get the driver's pin map and check for the pins in it. Tests that the
// consumer can determine pin capabilities
func TestPinMap(t *testing.T) {
	h, _ := newTestHost(t)

	m := h.DefinedPins()
	require.NotNil(t, m.GetPin(27), "GPIO27 is expected to be defined")
	assert.Nil(t, m.GetPin(99), "pin 99 should not exist")
	assert.True(t, m.GetPin(13).HasCapability(CAP_PWM))
	assert.False(t, m.GetPin(27).HasCapability(CAP_PWM))
}

func TestNewHostInitFailure(t *testing.T) {
	driver := NewMockDriver()
	driver.InitError = ErrPermission

	_, err := NewHost(driver, nil)
	assert.ErrorIs(t, err, ErrPermission)

	_, err = NewHost(nil, nil)
	assert.ErrorIs(t, err, ErrEnvironment)
}

func TestPinMode(t *testing.T) {
	h, driver := newTestHost(t)

	require.NoError(t, h.PinMode(16, INPUT_PULLDOWN))
	assert.Equal(t, INPUT_PULLDOWN, driver.MockGetPinMode(16))

	// Change to output. The new pin mode takes effect.
	require.NoError(t, h.PinMode(16, OUTPUT))
	assert.Equal(t, OUTPUT, driver.MockGetPinMode(16))

	mode, ok := h.Mode(16)
	assert.True(t, ok)
	assert.Equal(t, OUTPUT, mode)
}

func TestPinModeErrors(t *testing.T) {
	h, driver := newTestHost(t)

	err := h.PinMode(40, OUTPUT)
	assert.ErrorIs(t, err, ErrConfig)
	var pe *PinError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, Pin(40), pe.Pin)
	assert.Equal(t, "PinMode", pe.Op)

	// 27 has no hardware pwm
	assert.ErrorIs(t, h.PinMode(27, PWM_OUTPUT), ErrConfig)

	driver.MockClaim(6, "pid 4242")
	assert.ErrorIs(t, h.PinMode(6, OUTPUT), ErrBusy)
	assert.Empty(t, h.Assigned())
}

func TestOutputKeepsLevel(t *testing.T) {
	h, driver := newTestHost(t)
	driver.MockSetPinValue(27, HIGH)

	require.NoError(t, h.PinMode(27, OUTPUT))
	v, err := h.DigitalRead(27)
	require.NoError(t, err)
	assert.Equal(t, HIGH, v)
}

func TestDigitalWrite(t *testing.T) {
	h, driver := newTestHost(t)

	require.NoError(t, h.PinMode(17, OUTPUT))
	require.NoError(t, h.DigitalWrite(17, LOW))
	assert.Equal(t, LOW, driver.MockGetPinValue(17))

	require.NoError(t, h.DigitalWrite(17, HIGH))
	assert.Equal(t, HIGH, driver.MockGetPinValue(17))

	assert.ErrorIs(t, h.DigitalWrite(17, 2), ErrConfig)
	assert.ErrorIs(t, h.DigitalWrite(26, HIGH), ErrConfig, "mode not set")

	require.NoError(t, h.PinMode(5, INPUT_PULLDOWN))
	assert.ErrorIs(t, h.DigitalWrite(5, HIGH), ErrConfig, "input pin")
}

func TestDigitalRead(t *testing.T) {
	h, driver := newTestHost(t)

	require.NoError(t, h.PinMode(5, INPUT_PULLDOWN))
	for _, level := range []int{LOW, HIGH, LOW} {
		driver.MockDrive(5, level)
		v, err := h.DigitalRead(5)
		require.NoError(t, err)
		assert.Equal(t, level, v)
	}

	_, err := h.DigitalRead(6)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestPWMWrite(t *testing.T) {
	h, driver := newTestHost(t)

	require.NoError(t, h.PinMode(13, PWM_OUTPUT))
	require.NoError(t, h.PWMWrite(13, 20*time.Millisecond, 1500*time.Microsecond))
	assert.Equal(t, MockPWM{Period: 20 * time.Millisecond, Duty: 1500 * time.Microsecond}, driver.MockGetPWM(13))

	assert.ErrorIs(t, h.PWMWrite(13, 20*time.Millisecond, 21*time.Millisecond), ErrConfig)

	require.NoError(t, h.PinMode(27, OUTPUT))
	assert.ErrorIs(t, h.PWMWrite(27, 20*time.Millisecond, time.Millisecond), ErrConfig)
}

func TestCloseReleasesPins(t *testing.T) {
	h, driver := newTestHost(t)

	require.NoError(t, h.PinMode(27, OUTPUT))
	require.NoError(t, h.PinMode(16, INPUT_PULLDOWN))
	assert.Equal(t, []Pin{16, 27}, h.Assigned())

	require.NoError(t, h.Close())
	assert.Empty(t, h.Assigned())
	assert.False(t, driver.MockClaimed(27))
	assert.False(t, driver.MockClaimed(16))

	// the mode survives the release
	assert.Equal(t, OUTPUT, driver.MockGetPinMode(27))
}

func TestDebugPinMap(t *testing.T) {
	h, _ := newTestHost(t)

	var buf bytes.Buffer
	h.DebugPinMap(&buf)
	assert.Contains(t, buf.String(), "Pin 13: GPIO13  cap:input,output,input_pullup,input_pulldown,pwm\n")
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want PinIOMode
	}{
		{"output", OUTPUT},
		{"pwm", PWM_OUTPUT},
		{"input", INPUT},
		{"Input_PullDown", INPUT_PULLDOWN},
		{"input_pullup", INPUT_PULLUP},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("analog")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestMap(t *testing.T) {
	assert.Equal(t, 1000, Map(0, 0, 180, 1000, 2000))
	assert.Equal(t, 1500, Map(90, 0, 180, 1000, 2000))
	assert.Equal(t, 2000, Map(180, 0, 180, 1000, 2000))
}

package button

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robochess/pinctl"
)

func newButton(t *testing.T, pin pinctl.Pin) (*Button, *pinctl.MockDriver) {
	t.Helper()
	driver := pinctl.NewMockDriver()
	h, err := pinctl.NewHost(driver, nil)
	require.NoError(t, err)
	b, err := New(h, pin)
	require.NoError(t, err)
	return b, driver
}

func TestFloatingReadsReleased(t *testing.T) {
	b, driver := newButton(t, 16)
	assert.Equal(t, pinctl.INPUT_PULLDOWN, driver.MockGetPinMode(16))

	for i := 0; i < 3; i++ {
		pressed, err := b.IsPressed()
		require.NoError(t, err)
		assert.False(t, pressed)
		assert.Equal(t, pinctl.LOW, driver.MockGetPinValue(16))
	}
}

func TestPressRelease(t *testing.T) {
	b, driver := newButton(t, 5)

	driver.MockDrive(5, pinctl.HIGH)
	state, err := b.State()
	require.NoError(t, err)
	assert.Equal(t, "pressed", state)

	driver.MockFloat(5)
	state, err = b.State()
	require.NoError(t, err)
	assert.Equal(t, "released", state)
}

func TestPollRunsHooks(t *testing.T) {
	b, driver := newButton(t, 16)

	var events []string
	b.WhenPressed(func() { events = append(events, "pressed") })
	b.WhenReleased(func() { events = append(events, "released") })

	changed, err := b.Poll()
	require.NoError(t, err)
	assert.False(t, changed)

	driver.MockDrive(16, pinctl.HIGH)
	changed, err = b.Poll()
	require.NoError(t, err)
	assert.True(t, changed)

	// still held: no new event
	changed, err = b.Poll()
	require.NoError(t, err)
	assert.False(t, changed)

	driver.MockFloat(16)
	_, err = b.Poll()
	require.NoError(t, err)

	assert.Equal(t, []string{"pressed", "released"}, events)
}

func TestPressedAtStartup(t *testing.T) {
	driver := pinctl.NewMockDriver()
	driver.MockDrive(16, pinctl.HIGH)
	h, err := pinctl.NewHost(driver, nil)
	require.NoError(t, err)

	b, err := New(h, 16)
	require.NoError(t, err)

	fired := false
	b.WhenPressed(func() { fired = true })
	changed, err := b.Poll()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, fired, "already pressed at startup is not a new press")
}

func TestClose(t *testing.T) {
	b, driver := newButton(t, 5)
	require.NoError(t, b.Close())
	assert.False(t, driver.MockClaimed(5))
}

package pinctl

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSysfs lays out a /sys/class/gpio look-alike with the given lines
// already created, as the kernel does on export, each at level.
func fakeSysfs(t *testing.T, levels map[Pin]int) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "export"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "unexport"), nil, 0o644))
	for pin, level := range levels {
		dir := filepath.Join(root, "gpio"+strconv.Itoa(int(pin)))
		require.NoError(t, os.Mkdir(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "direction"), []byte("in"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "value"), []byte(strconv.Itoa(level)), 0o644))
	}
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestSysfsInitWithoutInterface(t *testing.T) {
	d := NewSysfsDriver(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, d.Init(), ErrEnvironment)
}

func TestSysfsOutputKeepsLevel(t *testing.T) {
	root := fakeSysfs(t, map[Pin]int{27: HIGH, 17: LOW})
	h, err := NewHost(NewSysfsDriver(root), nil)
	require.NoError(t, err)

	require.NoError(t, h.PinMode(27, OUTPUT))
	assert.Equal(t, "27", readFile(t, filepath.Join(root, "export")))
	assert.Equal(t, "high", readFile(t, filepath.Join(root, "gpio27", "direction")))

	require.NoError(t, h.PinMode(17, OUTPUT))
	assert.Equal(t, "low", readFile(t, filepath.Join(root, "gpio17", "direction")))

	v, err := h.DigitalRead(27)
	require.NoError(t, err)
	assert.Equal(t, HIGH, v)
}

func TestSysfsReadWrite(t *testing.T) {
	root := fakeSysfs(t, map[Pin]int{6: LOW})
	h, err := NewHost(NewSysfsDriver(root), nil)
	require.NoError(t, err)

	require.NoError(t, h.PinMode(6, OUTPUT))
	require.NoError(t, h.DigitalWrite(6, HIGH))
	assert.Equal(t, "1", readFile(t, filepath.Join(root, "gpio6", "value")))

	v, err := h.DigitalRead(6)
	require.NoError(t, err)
	assert.Equal(t, HIGH, v)

	require.NoError(t, h.DigitalWrite(6, LOW))
	assert.Equal(t, "0", readFile(t, filepath.Join(root, "gpio6", "value")))
}

func TestSysfsRelease(t *testing.T) {
	root := fakeSysfs(t, map[Pin]int{26: LOW})
	h, err := NewHost(NewSysfsDriver(root), nil)
	require.NoError(t, err)

	require.NoError(t, h.PinMode(26, OUTPUT))
	require.NoError(t, h.Close())
	assert.Equal(t, "26", readFile(t, filepath.Join(root, "unexport")))
	assert.Equal(t, "low", readFile(t, filepath.Join(root, "gpio26", "direction")))
}

func TestSysfsUnsupportedModes(t *testing.T) {
	root := fakeSysfs(t, map[Pin]int{16: LOW, 13: LOW})
	h, err := NewHost(NewSysfsDriver(root), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, h.PinMode(16, INPUT_PULLDOWN), ErrConfig)
	assert.ErrorIs(t, h.PinMode(13, PWM_OUTPUT), ErrConfig)
}

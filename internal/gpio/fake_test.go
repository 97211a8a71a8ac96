package gpio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakePinsReadAnalog(t *testing.T) {
	f := NewFakePins([]int{100, 200, 300})
	require.NoError(t, f.SetSensorPower(true))

	for _, want := range []int{100, 200, 300, 300} {
		v, err := f.ReadAnalog()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Zero(t, f.ReadWhileUnpowered)
}

func TestFakePinsNoSamples(t *testing.T) {
	f := NewFakePins(nil)
	_, err := f.ReadAnalog()
	assert.Error(t, err)
}

func TestFakePinsReadError(t *testing.T) {
	f := NewFakePins([]int{1})
	f.ReadError = errors.New("simulated error")

	_, err := f.ReadAnalog()
	require.Error(t, err)
	assert.Equal(t, "simulated error", err.Error())
}

func TestFakePinsTracksUnpoweredReads(t *testing.T) {
	f := NewFakePins([]int{1})
	_, _ = f.ReadAnalog()
	assert.Equal(t, 1, f.ReadWhileUnpowered)
}

func TestFakePinsButtonScript(t *testing.T) {
	f := NewFakePins([]int{1})
	f.Button = []bool{false, true}

	for _, want := range []bool{false, true, false, false} {
		v, err := f.ButtonPressed()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
}

func TestFakePinsRecordsOutputs(t *testing.T) {
	f := NewFakePins([]int{1})
	_ = f.SetSensorPower(true)
	_ = f.SetSensorPower(false)
	_ = f.SetLED(true)

	assert.Equal(t, []bool{true, false}, f.PowerLog)
	assert.Equal(t, []bool{true}, f.LEDLog)
	assert.False(t, f.Powered)
}

func TestFakePinsCloseAndReset(t *testing.T) {
	f := NewFakePins([]int{1, 2})
	_, _ = f.ReadAnalog()
	require.NoError(t, f.Close())
	assert.True(t, f.Closed)

	f.Reset()
	assert.False(t, f.Closed)
	v, _ := f.ReadAnalog()
	assert.Equal(t, 1, v)
}

func TestIIOReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("2048\n"), 0o644))

	r := NewIIOReader(path)
	v, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 2048, v)
	assert.NoError(t, r.Close())
}

func TestIIOReaderErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewIIOReader(filepath.Join(dir, "missing")).Read()
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(bad, []byte("not-a-number"), 0o644))
	_, err = NewIIOReader(bad).Read()
	assert.Error(t, err)
}

func TestADSChannelRange(t *testing.T) {
	_, err := adsChannel(4)
	assert.Error(t, err)
	_, err = adsChannel(0)
	assert.NoError(t, err)
}

package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReportExactJSON(t *testing.T) {
	data, err := FormatReport(Report{Moisture: 62, State: "wet", Threshold: 50, RollingAverage: 58})
	require.NoError(t, err)
	assert.JSONEq(t, `{"moisture":62,"state":"wet","threshold":50,"rolling_average":58}`, string(data))
}

func TestFormatReportDecodes(t *testing.T) {
	in := Report{Moisture: 10, State: "dry", Threshold: 40, RollingAverage: 12}
	data, err := FormatReport(in)
	require.NoError(t, err)

	var out Report
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMultiFansOutInOrder(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, nil, b}

	m.Emit(NameState, "dry")
	m.Emit(NameThreshold, "55")

	want := []Emitted{{NameState, "dry"}, {NameThreshold, "55"}}
	assert.Equal(t, want, a.Events)
	assert.Equal(t, want, b.Events)
}

func TestRecorderNamed(t *testing.T) {
	r := NewRecorder()
	r.Emit(NameSettings, "no settings found")
	r.Emit(NameState, "wet")
	r.Emit(NameState, "dry")

	got := r.Named(NameState)
	require.Len(t, got, 2)
	assert.Equal(t, "wet", got[0].Payload)
	assert.Equal(t, "dry", got[1].Payload)
	assert.Empty(t, r.Named(NameThreshold))

	r.Reset()
	assert.Empty(t, r.Events)
}

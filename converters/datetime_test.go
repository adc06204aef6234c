package converters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckString(t *testing.T) {
	op := errors.Op("test.CheckString")

	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{name: "valid string", input: "test string", want: "test string"},
		{name: "empty string", input: "", wantErr: true},
		{name: "non-string (int)", input: 123, wantErr: true},
		{name: "non-string (nil)", input: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckString(op, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckInt64(t *testing.T) {
	op := errors.Op("test.CheckInt64")

	tests := []struct {
		name    string
		input   interface{}
		want    int64
		wantErr bool
	}{
		{name: "int64", input: int64(123), want: 123},
		{name: "int", input: 123, want: 123},
		{name: "uint8", input: uint8(7), want: 7},
		{name: "json number", input: json.Number("-1000"), want: -1000},
		{name: "integral float", input: float64(14320000), want: 14320000},
		{name: "fractional float", input: 1.5, wantErr: true},
		{name: "fractional json number", input: json.Number("1.5"), wantErr: true},
		{name: "string", input: "12", wantErr: true},
		{name: "bool", input: true, wantErr: true},
		{name: "nil", input: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckInt64(op, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(1), FloorDiv(1000, 1000))
	assert.Equal(t, int64(1), FloorDiv(1999, 1000))
	assert.Equal(t, int64(0), FloorDiv(999, 1000))
	assert.Equal(t, int64(-1), FloorDiv(-1, 1000))
	assert.Equal(t, int64(-1), FloorDiv(-1000, 1000))
	assert.Equal(t, int64(-2), FloorDiv(-1001, 1000))
}

func TestTimeToEpoch(t *testing.T) {
	ts := time.UnixMilli(1000)
	assert.Equal(t, int64(1000), TimeToEpoch(ts, ""))
	assert.Equal(t, int64(1000), TimeToEpoch(ts, FormatMillis))
	assert.Equal(t, int64(1), TimeToEpoch(ts, FormatSeconds))
	assert.Equal(t, int64(-1), TimeToEpoch(time.UnixMilli(-1), FormatSeconds))
}

func TestEpochToTime(t *testing.T) {
	got, err := EpochToTime(json.Number("1000"), "")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.UnixMilli(1000)))

	got, err = EpochToTime(int64(1), FormatSeconds)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Unix(1, 0)))

	_, err = EpochToTime("soon", "")
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"yyyy-MM-dd HH:mm:ss", "2006-01-02 15:04:05"},
		{"yyyy-MM-dd'T'HH:mm:ss.SSSXXX", "2006-01-02T15:04:05.000Z07:00"},
		{"dd MMM yy hh:mm a", "02 Jan 06 03:04 PM"},
		{"EEEE, d MMMM yyyy", "Monday, 2 January 2006"},
		{"HH 'o''clock'", "15 o'clock"},
		{time.RFC3339, time.RFC3339},
		{"20060102", "20060102"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Layout(tt.pattern))
		})
	}
}

func TestFormatAndParseTime(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 14, 5, 7, 0, time.UTC)
	text := FormatTime(ts, "yyyy-MM-dd HH:mm:ss")
	assert.Equal(t, "2024-03-09 14:05:07", text)

	back, err := ParseTime(text, "yyyy-MM-dd HH:mm:ss", nil)
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))

	_, err = ParseTime("09/03/2024", "yyyy-MM-dd", nil)
	assert.Error(t, err)
	_, err = ParseTime("", "yyyy-MM-dd", nil)
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	d, err = ParseDuration(json.Number("1500"))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Nanosecond, d)

	_, err = ParseDuration("forever")
	assert.Error(t, err)
}

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = LoadZone("Mars/Olympus_Mons")
	assert.Error(t, err)
	_, err = LoadZone("")
	assert.Error(t, err)
}

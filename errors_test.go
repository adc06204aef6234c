package jsonconv

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reading struct {
	Station string  `json:"station"`
	Power   int     `json:"power"`
	Temps   []int   `json:"temps"`
	Ratio   float64 `json:"ratio"`
}

const badReading = `{"station":"A1","power":"high","temps":[20,"warm",22],"ratio":0.5}`

func TestIgnoreConversionErrors_Off(t *testing.T) {
	e := New()
	_, err := UnmarshalTo[reading](e, []byte(badReading))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionFailure)

	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "$.power", ce.Path)
	assert.Equal(t, reflect.TypeFor[int](), ce.Type)
}

func TestIgnoreConversionErrors_Report(t *testing.T) {
	e := New()
	n := mustParse(t, badReading)

	v, suppressed, err := e.DeserializeReport(n, reflect.TypeFor[reading](), WithIgnoreConversionErrors(true))
	require.NoError(t, err)
	assert.Equal(t, reading{Station: "A1", Temps: []int{20, 0, 22}, Ratio: 0.5}, v)

	require.Len(t, suppressed, 2)
	assert.ErrorIs(t, suppressed["$.power"], ErrConversionFailure)
	assert.ErrorIs(t, suppressed["$.temps[1]"], ErrConversionFailure)

	_, suppressed, err = e.DeserializeReport(mustParse(t, `{"station":"ok"}`), reflect.TypeFor[reading](), WithIgnoreConversionErrors(true))
	require.NoError(t, err)
	assert.Nil(t, suppressed)
}

func TestIgnoreConversionErrors_Root(t *testing.T) {
	e := New()
	v, suppressed, err := e.DeserializeReport(mustParse(t, `"many"`), reflect.TypeFor[int](), WithIgnoreConversionErrors(true))
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Contains(t, suppressed, "$")

	got, err := DeserializeTo[int](e, mustParse(t, `"many"`), WithIgnoreConversionErrors(true))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestIgnoreConversionErrors_EngineDefault(t *testing.T) {
	e := NewWithOptions(WithIgnoreConversionErrors(true))
	got, err := UnmarshalTo[reading](e, []byte(badReading))
	require.NoError(t, err)
	assert.Equal(t, "A1", got.Station)

	// a per-call option overrides the engine default
	_, err = UnmarshalTo[reading](e, []byte(badReading), WithIgnoreConversionErrors(false))
	assert.ErrorIs(t, err, ErrConversionFailure)
}

func TestIgnoreConversionErrors_Serialize(t *testing.T) {
	type sample struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	e := New()
	in := []sample{{Name: "a", Value: 1}, {Name: "b", Value: math.NaN()}}

	_, err := e.Marshal(in)
	assert.ErrorIs(t, err, ErrConversionFailure)

	b, err := e.Marshal(in, WithIgnoreConversionErrors(true))
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"a","value":1},{"name":"b"}]`, string(b))
}

func TestIgnoreConversionErrors_KeepsUnsupported(t *testing.T) {
	type holder struct {
		C chan int `json:"c"`
	}
	e := New()
	_, err := e.Serialize(holder{C: make(chan int)}, WithIgnoreConversionErrors(true))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.NotErrorIs(t, err, ErrConversionFailure)

	var ue *UnsupportedTypeError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "$.c", ue.Path)
}

func TestErrorTaxonomy(t *testing.T) {
	inner := errors.New("inner")
	tests := []struct {
		name string
		err  error
		is   error
		not  []error
	}{
		{"unsupported", &UnsupportedTypeError{Path: "$"}, ErrUnsupportedType, []error{ErrConversionFailure, ErrSecurityOptOut}},
		{"conversion", &ConversionError{Path: "$", Err: inner}, ErrConversionFailure, []error{ErrUnsupportedType, ErrSecurityOptOut}},
		{"opt-out", &SecurityOptOutError{Path: "$", Name: "x"}, ErrSecurityOptOut, []error{ErrUnsupportedType, ErrConversionFailure}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.is)
			for _, other := range tt.not {
				assert.NotErrorIs(t, tt.err, other)
			}
			assert.NotEmpty(t, tt.err.Error())
		})
	}

	assert.ErrorIs(t, &ConversionError{Err: inner}, inner)
	assert.True(t, suppressible(&ConversionError{Err: inner}))
	assert.False(t, suppressible(&ConversionError{Err: &SecurityOptOutError{}}))
	assert.False(t, suppressible(inner))
}

package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimings(t *testing.T) {
	assert.Equal(t, 4, T0H)
	assert.Equal(t, 8, T0L)
	assert.Equal(t, 8, T1H)
	assert.Equal(t, 4, T1L)
	assert.Equal(t, 500, Reset)
	assert.Equal(t, 25, FrameLen)
}

func TestEncode_Red(t *testing.T) {
	f := Encode(0xFF, 0x00, 0x00)

	require.Len(t, f, 25)
	for i := 0; i < 8; i++ {
		assert.Equal(t, zero, f[i], "green bit %d", i)
	}
	for i := 8; i < 16; i++ {
		assert.Equal(t, one, f[i], "red bit %d", i)
	}
	for i := 16; i < 24; i++ {
		assert.Equal(t, zero, f[i], "blue bit %d", i)
	}
	assert.Equal(t, reset, f[24])
}

func TestEncode_PulseShape(t *testing.T) {
	f := Encode(0, 0x80, 0)

	// bit 23 is the high bit of green
	assert.True(t, f[0].Level0)
	assert.Equal(t, uint16(T1H), f[0].Duration0)
	assert.False(t, f[0].Level1)
	assert.Equal(t, uint16(T1L), f[0].Duration1)

	assert.True(t, f[1].Level0)
	assert.Equal(t, uint16(T0H), f[1].Duration0)
	assert.False(t, f[1].Level1)
	assert.Equal(t, uint16(T0L), f[1].Duration1)

	assert.False(t, f[24].Level0)
	assert.Equal(t, uint16(Reset), f[24].Duration0)
	assert.Zero(t, f[24].Duration1)
}

func TestEncode_BitOrder(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint32
	}{
		{"black", 0, 0, 0, 0x000000},
		{"white", 0xFF, 0xFF, 0xFF, 0xFFFFFF},
		{"green", 0, 0xFF, 0, 0xFF0000},
		{"blue", 0, 0, 0xFF, 0x0000FF},
		{"orange", 255, 165, 0, 0xA5FF00},
		{"mixed", 0x12, 0x34, 0x56, 0x341256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Encode(tt.r, tt.g, tt.b)
			bits := Bits(&f)
			var got uint32
			for _, bit := range bits {
				got <<= 1
				if bit {
					got |= 1
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	colors := [][3]uint8{{0, 0, 0}, {255, 0, 0}, {0, 0, 155}, {1, 2, 3}, {255, 255, 255}}

	for _, c := range colors {
		f := Encode(c[0], c[1], c[2])
		r, g, b, err := Decode(&f)
		require.NoError(t, err)
		assert.Equal(t, c, [3]uint8{r, g, b})
	}
}

func TestDecode_Malformed(t *testing.T) {
	f := Encode(10, 20, 30)
	f[5].Duration0 = 6
	_, _, _, err := Decode(&f)
	assert.ErrorIs(t, err, ErrMalformed)

	f = Encode(10, 20, 30)
	f[24] = zero
	_, _, _, err = Decode(&f)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeInto_Overwrites(t *testing.T) {
	f := Encode(0xFF, 0xFF, 0xFF)
	EncodeInto(&f, 0, 0, 0)
	assert.Equal(t, Encode(0, 0, 0), f)
}

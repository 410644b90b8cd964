package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattery(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    float64
		ok      bool
	}{
		{
			name:    "full charge",
			payload: []byte{0x00, 0x01, 0xC8, 0x00}, // 51200 / 512 = 100
			want:    100,
			ok:      true,
		},
		{
			name:    "half charge",
			payload: []byte{0x00, 0x01, 0x64, 0x00}, // 25600 / 512 = 50
			want:    50,
			ok:      true,
		},
		{
			name:    "short payload",
			payload: []byte{0x00, 0x01, 0xC8},
			ok:      false,
		},
		{
			name: "empty payload",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Battery(tt.payload)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestMotion(t *testing.T) {
	// 2-byte header + 3 triples of int16 BE at offsets 2, 8, 14.
	frame := []byte{
		0x00, 0x01, // header
		0x00, 0x01, 0xFF, 0xFF, 0x00, 0x02, // triple 0: 1, -1, 2
		0x40, 0x00, 0xC0, 0x00, 0x00, 0x00, // triple 1: 16384, -16384, 0
		0x00, 0x10, 0x00, 0x20, 0x00, 0x30, // triple 2: 16, 32, 48
	}

	t.Run("accelerometer scale", func(t *testing.T) {
		got := Motion(frame, AccelScale)
		require.Len(t, got, 3)
		assert.InDelta(t, 1*AccelScale, got[0].X, 1e-12)
		assert.InDelta(t, -1*AccelScale, got[0].Y, 1e-12)
		assert.InDelta(t, 2*AccelScale, got[0].Z, 1e-12)
		assert.InDelta(t, 1.0, got[1].X, 1e-12)
		assert.InDelta(t, -1.0, got[1].Y, 1e-12)
		assert.InDelta(t, 0.0, got[1].Z, 1e-12)
	})

	t.Run("gyroscope scale", func(t *testing.T) {
		got := Motion(frame, GyroScale)
		require.Len(t, got, 3)
		assert.InDelta(t, 16*GyroScale, got[2].X, 1e-9)
		assert.InDelta(t, 32*GyroScale, got[2].Y, 1e-9)
		assert.InDelta(t, 48*GyroScale, got[2].Z, 1e-9)
	})

	t.Run("truncated frame yields complete triples only", func(t *testing.T) {
		assert.Len(t, Motion(frame[:14], AccelScale), 2)
		assert.Len(t, Motion(frame[:8], AccelScale), 1)
		assert.Empty(t, Motion(frame[:7], AccelScale))
		assert.Empty(t, Motion(nil, AccelScale))
	})
}

func TestControlChunk(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    string
	}{
		{
			name:    "simple chunk",
			payload: append([]byte{0x00, 0x01, 4}, []byte("{\"a\"rest")...),
			want:    "{\"a\"",
		},
		{
			name:    "length clamped to payload",
			payload: []byte{0x00, 0x01, 20, 'a', 'b'},
			want:    "ab",
		},
		{
			name:    "zero length",
			payload: []byte{0x00, 0x01, 0, 'x'},
			want:    "",
		},
		{
			name:    "too short",
			payload: []byte{0x00, 0x01},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(ControlChunk(tt.payload)))
		})
	}
}

func TestEEG12(t *testing.T) {
	t.Run("byte triple unpacks to two samples", func(t *testing.T) {
		got := EEG12([]byte{0x00, 0x01, 0xAB, 0xCD, 0xEF})
		assert.Equal(t, []uint16{0xABC, 0xDEF}, got)
	})

	t.Run("multiple groups", func(t *testing.T) {
		got := EEG12([]byte{0x00, 0x01, 0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56})
		assert.Equal(t, []uint16{0xABC, 0xDEF, 0x123, 0x456}, got)
	})

	t.Run("trailing partial group ignored", func(t *testing.T) {
		got := EEG12([]byte{0x00, 0x01, 0xAB, 0xCD, 0xEF, 0x12})
		assert.Equal(t, []uint16{0xABC, 0xDEF}, got)
	})

	t.Run("header only", func(t *testing.T) {
		assert.Empty(t, EEG12([]byte{0x00, 0x01}))
		assert.Empty(t, EEG12(nil))
	})
}

func TestEEG14(t *testing.T) {
	t.Run("seven byte group yields four samples below 2^14", func(t *testing.T) {
		got := EEG14([]byte{0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
		require.Len(t, got, 4)
		for _, s := range got {
			assert.Less(t, s, uint16(1<<14))
		}
		assert.Equal(t, []uint16{0x3FFF, 0x3FFF, 0x3FFF, 0x3FFF}, got)
	})

	t.Run("bit alignment", func(t *testing.T) {
		// 14-bit samples 1, 2, 3, 4 packed MSB-first.
		got := EEG14([]byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x20, 0x00, 0xC0, 0x04})
		assert.Equal(t, []uint16{1, 2, 3, 4}, got)
	})

	t.Run("trailing partial group yields no sample", func(t *testing.T) {
		payload := []byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x20, 0x00, 0xC0, 0x04, 0xAA, 0xBB}
		got := EEG14(payload)
		assert.Equal(t, []uint16{1, 2, 3, 4}, got)
	})
}

func TestPPG(t *testing.T) {
	t.Run("24-bit big endian", func(t *testing.T) {
		got := PPG([]byte{0x00, 0x01, 0x01, 0x02, 0x03})
		assert.Equal(t, []uint32{0x010203}, got)
	})

	t.Run("multiple samples with trailing bytes ignored", func(t *testing.T) {
		got := PPG([]byte{0x00, 0x01, 0x01, 0x02, 0x03, 0xFF, 0xFF, 0xFF, 0xAA})
		assert.Equal(t, []uint32{0x010203, 0xFFFFFF}, got)
	})

	t.Run("short payload", func(t *testing.T) {
		assert.Empty(t, PPG([]byte{0x00, 0x01, 0x01, 0x02}))
		assert.Empty(t, PPG(nil))
	})
}

func TestCommand(t *testing.T) {
	tests := []struct {
		cmd  string
		want []byte
	}{
		{cmd: "s", want: []byte{2, 's', '\n'}},
		{cmd: "h", want: []byte{2, 'h', '\n'}},
		{cmd: "d", want: []byte{2, 'd', '\n'}},
		{cmd: "v1", want: []byte{3, 'v', '1', '\n'}},
		{cmd: "p21", want: []byte{4, 'p', '2', '1', '\n'}},
		{cmd: "p1035", want: []byte{6, 'p', '1', '0', '3', '5', '\n'}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			got := Command(tt.cmd)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int(got[0]), len(got)-1, "length byte MUST exclude itself")
		})
	}
}

func TestEncodeEEG12RoundTrip(t *testing.T) {
	t.Run("even sample count", func(t *testing.T) {
		samples := []uint16{0xABC, 0xDEF, 0x123, 0x456}
		frame := EncodeEEG12(7, samples)
		assert.Equal(t, []byte{0x00, 0x07}, frame[:2])
		assert.Equal(t, samples, EEG12(frame))
	})

	t.Run("odd sample count pads with zero", func(t *testing.T) {
		frame := EncodeEEG12(0, []uint16{0x123})
		assert.Equal(t, []uint16{0x123, 0}, EEG12(frame))
	})

	t.Run("values masked to 12 bits", func(t *testing.T) {
		frame := EncodeEEG12(0, []uint16{0xFFFF, 0xFFFF})
		assert.Equal(t, []uint16{0xFFF, 0xFFF}, EEG12(frame))
	})
}

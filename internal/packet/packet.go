// Package packet implements the vendor frame formats of the headband:
// decoding of notification payloads into physical samples and encoding of
// control-channel command frames.
//
// Every notification starts with a 2-byte sequence header; the payload
// layout after the header depends on the characteristic. All decoders are
// pure functions and truncate silently on short payloads rather than
// emitting partial samples.
package packet

import "encoding/binary"

// HeaderLen is the length of the sequence header preceding every payload.
const HeaderLen = 2

// Physical scale constants for motion samples.
const (
	// AccelScale converts raw accelerometer counts to g (2^-14 g per LSB).
	AccelScale = 1.0 / 16384.0
	// GyroScale converts raw gyroscope counts to deg/s.
	GyroScale = 0.0074768
)

// Triple is one x/y/z motion sample in physical units.
type Triple struct {
	X, Y, Z float64
}

// Battery decodes a telemetry frame into a battery percentage.
// The raw level is a big-endian uint16 at offset 2, in 1/512 percent units.
// Returns false if the frame is too short to hold the level.
func Battery(p []byte) (float64, bool) {
	if len(p) < HeaderLen+2 {
		return 0, false
	}
	raw := binary.BigEndian.Uint16(p[HeaderLen:])
	return float64(raw) / 512.0, true
}

// motionOffsets are the byte offsets of the three x/y/z triples within a
// motion frame. Each triple is three signed big-endian 16-bit values.
var motionOffsets = [3]int{2, 8, 14}

// Motion decodes an accelerometer or gyroscope frame into up to three
// triples, scaled by the per-class constant (AccelScale or GyroScale).
// Truncated frames yield only the complete triples.
func Motion(p []byte, scale float64) []Triple {
	out := make([]Triple, 0, len(motionOffsets))
	for _, off := range motionOffsets {
		if off+6 > len(p) {
			break
		}
		out = append(out, Triple{
			X: float64(int16(binary.BigEndian.Uint16(p[off:]))) * scale,
			Y: float64(int16(binary.BigEndian.Uint16(p[off+2:]))) * scale,
			Z: float64(int16(binary.BigEndian.Uint16(p[off+4:]))) * scale,
		})
	}
	return out
}

// ControlChunk extracts the length-prefixed UTF-8 chunk from a control
// frame. The byte after the header gives the chunk length; the length is
// clamped to the available payload. Returns nil for frames too short to
// carry a chunk.
func ControlChunk(p []byte) []byte {
	if len(p) < HeaderLen+1 {
		return nil
	}
	n := int(p[HeaderLen])
	rest := p[HeaderLen+1:]
	if n > len(rest) {
		n = len(rest)
	}
	return rest[:n]
}

// EEG12 decodes a densely packed 12-bit EEG payload: every 3 bytes after
// the header hold two samples. A trailing partial group yields nothing.
func EEG12(p []byte) []uint16 {
	if len(p) < HeaderLen {
		return nil
	}
	data := p[HeaderLen:]
	out := make([]uint16, 0, len(data)/3*2)
	for i := 0; i+3 <= len(data); i += 3 {
		out = append(out,
			uint16(data[i])<<4|uint16(data[i+1])>>4,
			uint16(data[i+1]&0x0F)<<8|uint16(data[i+2]),
		)
	}
	return out
}

// EEG14 decodes a densely packed 14-bit EEG payload: every complete
// 7-byte group after the header holds four samples, MSB first. A trailing
// partial group yields nothing.
func EEG14(p []byte) []uint16 {
	if len(p) < HeaderLen {
		return nil
	}
	data := p[HeaderLen:]
	out := make([]uint16, 0, len(data)/7*4)
	for i := 0; i+7 <= len(data); i += 7 {
		g := data[i : i+7]
		out = append(out,
			uint16(g[0])<<6|uint16(g[1])>>2,
			uint16(g[1]&0x03)<<12|uint16(g[2])<<4|uint16(g[3])>>4,
			uint16(g[3]&0x0F)<<10|uint16(g[4])<<2|uint16(g[5])>>6,
			uint16(g[5]&0x3F)<<8|uint16(g[6]),
		)
	}
	return out
}

// PPG decodes a PPG payload: every 3 bytes after the header hold one
// 24-bit big-endian unsigned sample.
func PPG(p []byte) []uint32 {
	if len(p) < HeaderLen {
		return nil
	}
	data := p[HeaderLen:]
	out := make([]uint32, 0, len(data)/3)
	for i := 0; i+3 <= len(data); i += 3 {
		out = append(out, uint32(data[i])<<16|uint32(data[i+1])<<8|uint32(data[i+2]))
	}
	return out
}

// EncodeEEG12 builds a frame the EEG12 decoder accepts: a 2-byte
// big-endian sequence header followed by samples packed two per 3-byte
// group. Samples are masked to 12 bits; an odd trailing sample is paired
// with zero. Used by the mock replay path to synthesize live-shaped
// notifications.
func EncodeEEG12(seq uint16, samples []uint16) []byte {
	buf := make([]byte, HeaderLen, HeaderLen+(len(samples)+1)/2*3)
	binary.BigEndian.PutUint16(buf, seq)
	for i := 0; i < len(samples); i += 2 {
		a := samples[i] & 0x0FFF
		var b uint16
		if i+1 < len(samples) {
			b = samples[i+1] & 0x0FFF
		}
		buf = append(buf,
			byte(a>>4),
			byte(a&0x0F)<<4|byte(b>>8),
			byte(b),
		)
	}
	return buf
}

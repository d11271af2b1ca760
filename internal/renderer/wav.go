package renderer

import (
	"bytes"
	"encoding/binary"
)

// normalizePeak rescales 16-bit PCM WAV samples so the loudest sample sits at
// target (0..1] of full scale. Returns the rewritten bytes and true, or the
// input unchanged and false when the data is not a 16-bit PCM WAV the parser
// understands.
func normalizePeak(data []byte, target float64) ([]byte, bool) {
	if target <= 0 || target > 1 {
		return data, false
	}
	if len(data) < 44 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return data, false
	}

	var (
		audioFormat   uint16
		bitsPerSample uint16
		haveFmt       bool
		dataOffset    int
		dataSize      int
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := data[offset : offset+4]
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return data, false
		}
		switch string(chunkID) {
		case "fmt ":
			if chunkSize < 16 {
				return data, false
			}
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
			haveFmt = true
		case "data":
			dataOffset = body
			dataSize = chunkSize
		}
		// Chunks are word-aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if !haveFmt || audioFormat != 1 || bitsPerSample != 16 || dataOffset == 0 || dataSize < 2 {
		return data, false
	}

	samples := data[dataOffset : dataOffset+dataSize-dataSize%2]
	peak := 0
	for i := 0; i+1 < len(samples); i += 2 {
		s := int(int16(binary.LittleEndian.Uint16(samples[i : i+2])))
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		return data, false
	}

	gain := target * 32767 / float64(peak)
	out := make([]byte, len(data))
	copy(out, data)
	scaled := out[dataOffset : dataOffset+len(samples)]
	for i := 0; i+1 < len(scaled); i += 2 {
		s := float64(int16(binary.LittleEndian.Uint16(scaled[i : i+2])))
		v := s * gain
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(scaled[i:i+2], uint16(int16(v)))
	}
	return out, true
}

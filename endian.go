package fitsio

import (
	"encoding/binary"
	"math"
)

// FITS data units are unconditionally big-endian (spec §4.1, §6). The
// teacher (astrogo/fitsio) reaches for encoding/binary.BigEndian directly
// rather than an abstracted byte-order engine, and since this domain never
// needs little-endian, that is the grounded choice here too — see
// DESIGN.md for why arloliu/mebo's configurable endian.EndianEngine is not
// wired in.

func readI16BE(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) }
func readI32BE(b []byte) int32 { return int32(binary.BigEndian.Uint32(b)) }
func readI64BE(b []byte) int64 { return int64(binary.BigEndian.Uint64(b)) }
func readU16BE(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func readU32BE(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func readU64BE(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
func readF32BE(b []byte) float32 { return math.Float32frombits(binary.BigEndian.Uint32(b)) }
func readF64BE(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) }

func writeI16BE(b []byte, v int16) { binary.BigEndian.PutUint16(b, uint16(v)) }
func writeI32BE(b []byte, v int32) { binary.BigEndian.PutUint32(b, uint32(v)) }
func writeI64BE(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)) }
func writeU16BE(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func writeU32BE(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func writeU64BE(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func writeF32BE(b []byte, v float32) { binary.BigEndian.PutUint32(b, math.Float32bits(v)) }
func writeF64BE(b []byte, v float64) { binary.BigEndian.PutUint64(b, math.Float64bits(v)) }

// swapI16BulkBE converts a big-endian byte buffer into a freshly-allocated
// []int16 in one pass, decoding each element with readI16BE. The other
// swap*BulkBE helpers below do the same for their types.
func swapI16BulkBE(raw []byte) []int16 {
	n := len(raw) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = readI16BE(raw[i*2:])
	}
	return out
}

func swapI32BulkBE(raw []byte) []int32 {
	n := len(raw) / 4
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = readI32BE(raw[i*4:])
	}
	return out
}

func swapI64BulkBE(raw []byte) []int64 {
	n := len(raw) / 8
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = readI64BE(raw[i*8:])
	}
	return out
}

func swapF32BulkBE(raw []byte) []float32 {
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = readF32BE(raw[i*4:])
	}
	return out
}

func swapF64BulkBE(raw []byte) []float64 {
	n := len(raw) / 8
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = readF64BE(raw[i*8:])
	}
	return out
}

func writeI16BulkBE(buf []byte, vs []int16) {
	for i, v := range vs {
		writeI16BE(buf[i*2:], v)
	}
}

func writeI32BulkBE(buf []byte, vs []int32) {
	for i, v := range vs {
		writeI32BE(buf[i*4:], v)
	}
}

func writeI64BulkBE(buf []byte, vs []int64) {
	for i, v := range vs {
		writeI64BE(buf[i*8:], v)
	}
}

func writeF32BulkBE(buf []byte, vs []float32) {
	for i, v := range vs {
		writeF32BE(buf[i*4:], v)
	}
}

func writeF64BulkBE(buf []byte, vs []float64) {
	for i, v := range vs {
		writeF64BE(buf[i*8:], v)
	}
}

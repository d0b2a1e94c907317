// Package addressmapping decodes physical addresses into DRAM coordinates.
package addressmapping

import "fmt"

// A Location identifies the DRAM coordinates an address maps to.
type Location struct {
	Row  int64
	Bank int
	Col  int
}

// A Mapper converts a physical address into DRAM coordinates. Mapping the
// same address always yields the same location.
type Mapper interface {
	Map(addr uint64) Location
}

type defaultMapper struct {
	colMask   uint64
	bankShift uint
	bankMask  uint64
	rowShift  uint

	permuteBank bool
	xorShift    uint
}

// Map extracts the column from the low bits, the bank from the next bits,
// and the row from the remaining high bits. With bank permutation enabled,
// the bank index is XORed with a hash taken from higher address bits so
// that strided accesses spread across banks.
func (m *defaultMapper) Map(addr uint64) Location {
	loc := Location{}
	loc.Col = int(addr & m.colMask)
	loc.Bank = int((addr >> m.bankShift) & m.bankMask)
	loc.Row = int64(addr >> (m.bankShift + m.rowShift))

	if loc.Row < 0 {
		panic(fmt.Sprintf("address 0x%x decodes to a negative row id", addr))
	}

	if m.permuteBank {
		loc.Bank ^= int((addr >> m.xorShift) & m.bankMask)
	}

	return loc
}

// Builder can build address mappers.
type Builder struct {
	rowBufSize  uint64
	numBank     uint64
	lineSize    uint64
	permuteBank bool
}

// MakeBuilder creates a builder with default configuration.
func MakeBuilder() Builder {
	return Builder{
		rowBufSize: 2048,
		numBank:    16,
		lineSize:   64,
	}
}

// WithRowBufSize sets the row buffer size in bytes.
func (b Builder) WithRowBufSize(size uint64) Builder {
	b.rowBufSize = size
	return b
}

// WithNumBank sets the total number of banks.
func (b Builder) WithNumBank(n uint64) Builder {
	b.numBank = n
	return b
}

// WithLineSize sets the cache line size that anchors the permutation hash.
func (b Builder) WithLineSize(size uint64) Builder {
	b.lineSize = size
	return b
}

// WithBankPermutation enables XOR-based bank index permutation.
func (b Builder) WithBankPermutation(enable bool) Builder {
	b.permuteBank = enable
	return b
}

// Build creates a Mapper. It panics if the configured sizes cannot form a
// valid bit layout.
func (b Builder) Build() Mapper {
	colBits := log2(b.rowBufSize, "row buffer size")
	bankBits := log2(b.numBank, "bank count")

	if colBits+bankBits >= 63 {
		panic("row buffer size and bank count leave no bits for the row id")
	}

	m := &defaultMapper{
		colMask:     b.rowBufSize - 1,
		bankShift:   colBits,
		bankMask:    b.numBank - 1,
		rowShift:    bankBits,
		permuteBank: b.permuteBank,
	}

	if b.permuteBank {
		// The hash comes from line-aligned higher address bits, offset well
		// above the direct bank field.
		m.xorShift = log2(b.lineSize, "line size") + 9
	}

	return m
}

func log2(v uint64, what string) uint {
	if v == 0 || v&(v-1) != 0 {
		panic(fmt.Sprintf("%s must be a power of two, got %d", what, v))
	}

	n := uint(0)
	for v > 1 {
		v >>= 1
		n++
	}

	return n
}

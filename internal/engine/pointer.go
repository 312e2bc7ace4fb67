package engine

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// Address is a packed 64-bit arena handle:
//
//	bits 63-62  memory region tag (forward = 1, backward = 2 or 3)
//	bits 61-32  slot length in float elements
//	bits 31-0   offset into the region's float array
//
// The zero value is the null address. Backward tags alternate between 2 and 3
// on every layer boundary, so a handle from the layer just finished resolves
// to the previous arena. With only two tags, a handle from two layers ago
// carries the current tag again; such a stale handle is not detected.
type Address uint64

// NullAddress is the null handle; dereferencing it panics.
const NullAddress Address = 0

const (
	forwardMemoryType = 1

	// maxSlotLength is the largest representable slot length.
	maxSlotLength = 1<<30 - 1

	lengthMask = 1<<30 - 1
)

func packAddress(memoryType, offset, length int) Address {
	return Address(uint64(memoryType)<<62 | uint64(length)<<32 | uint64(uint32(offset)))
}

// IsNull reports whether the address is the null handle.
func (a Address) IsNull() bool {
	return a == NullAddress
}

func (a Address) memoryType() int {
	return int(a >> 62)
}

// AddressOffset extracts the float offset of an address. Panics on null.
func AddressOffset(a Address) int {
	if a.IsNull() {
		panic("address is null")
	}
	return int(uint32(a))
}

// AddressLength extracts the slot length in floats of an address. Panics on null.
func AddressLength(a Address) int {
	if a.IsNull() {
		panic("address is null")
	}
	return int(a>>32) & lengthMask
}

// TensorPointer couples a packed arena address with its out-of-band shape
// descriptor. The zero value is the null pointer, returned by backward calls
// whose side produces no gradient and by cost functions in training mode.
//
// A forward pointer is valid until the next forward pass resets the arena; a
// backward pointer is valid until the second arena swap after its allocation.
type TensorPointer struct {
	address Address
	shape   tensor.Shape
	ctx     *ExecutionContext
}

// NullPointer is the null tensor pointer.
var NullPointer = TensorPointer{}

// IsNull reports whether the pointer is the null handle.
func (p TensorPointer) IsNull() bool {
	return p.address.IsNull()
}

// Address returns the packed arena address.
func (p TensorPointer) Address() Address {
	return p.address
}

// Shape returns the shape descriptor. The product of its dimensions equals
// the slot length.
func (p TensorPointer) Shape() tensor.Shape {
	return p.shape
}

// Buffer resolves the pointer to the backing arena's float array. The slot
// occupies Buffer()[Offset() : Offset()+Length()]. Panics on a null pointer.
func (p TensorPointer) Buffer() []float32 {
	if p.ctx == nil {
		panic("tensor pointer has no execution context")
	}
	return p.ctx.MemoryBuffer(p.address)
}

// Offset returns the float offset of the slot inside its arena.
func (p TensorPointer) Offset() int {
	return AddressOffset(p.address)
}

// Length returns the slot length in floats.
func (p TensorPointer) Length() int {
	return AddressLength(p.address)
}

func (p TensorPointer) String() string {
	if p.IsNull() {
		return "TensorPointer(null)"
	}
	return fmt.Sprintf("TensorPointer(type=%d offset=%d length=%d shape=%v)",
		p.address.memoryType(), p.Offset(), p.Length(), p.shape)
}

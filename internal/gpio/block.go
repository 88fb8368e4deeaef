package gpio

import (
	"fmt"
	"sync/atomic"
)

// Word offsets into the BCM283x GPIO register block.
const (
	fselWord   = 0x00 / 4 // GPFSEL0..5, ten pins per word, 3 bits each
	setWord    = 0x1c / 4 // GPSET0..1, write-1-to-set
	clrWord    = 0x28 / 4 // GPCLR0..1, write-1-to-clear
	levWord    = 0x34 / 4 // GPLEV0..1, read-only levels
	blockWords = 0xb4 / 4

	fselWidth = 3
	fselMask  = 1<<fselWidth - 1
)

// Function is the 3-bit function-select value of a pin.
type Function uint32

// Function-select values used by this package.
const (
	FuncInput  Function = 0
	FuncOutput Function = 1
)

// RegisterBlock is a typed view over the GPIO register words.
// Accessors use atomic loads and stores so the compiler never caches or
// elides a device-memory access.
type RegisterBlock struct {
	words []uint32
}

// NewRegisterBlock wraps words, which must cover the whole GPIO block.
func NewRegisterBlock(words []uint32) (*RegisterBlock, error) {
	if len(words) < blockWords {
		return nil, fmt.Errorf("register block too small: %d words, need %d", len(words), blockWords)
	}
	return &RegisterBlock{words: words}, nil
}

// FunctionSelect returns the current function of pin.
func (b *RegisterBlock) FunctionSelect(pin int) Function {
	word, shift := fselSlot(pin)
	return Function(atomic.LoadUint32(&b.words[word]) >> shift & fselMask)
}

// SetFunctionSelect clears the pin's 3-bit field and writes fn into it.
// Fields of the other nine pins sharing the word are preserved.
func (b *RegisterBlock) SetFunctionSelect(pin int, fn Function) {
	word, shift := fselSlot(pin)
	addr := &b.words[word]
	v := atomic.LoadUint32(addr)
	v &^= fselMask << shift
	v |= uint32(fn&fselMask) << shift
	atomic.StoreUint32(addr, v)
}

// Set asserts pin through the set register.
func (b *RegisterBlock) Set(pin int) {
	atomic.StoreUint32(&b.words[setWord+pin/32], 1<<uint(pin%32))
}

// Clear deasserts pin through the clear register.
func (b *RegisterBlock) Clear(pin int) {
	atomic.StoreUint32(&b.words[clrWord+pin/32], 1<<uint(pin%32))
}

// Level reads the pin level register.
func (b *RegisterBlock) Level(pin int) bool {
	return atomic.LoadUint32(&b.words[levWord+pin/32])&(1<<uint(pin%32)) != 0
}

func fselSlot(pin int) (word int, shift uint) {
	return fselWord + pin/10, uint(pin%10) * fselWidth
}

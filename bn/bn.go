// Package bn provides the word-level primitives underlying cairn's
// arbitrary-precision arithmetic. Every function is branch-free with
// respect to its numeric inputs: carries and borrows are derived with
// bitwise identities rather than comparisons, so callers can build
// constant-time big-integer operations on top of them.
//
// Primitives are named as the operation followed by a suffix indicating
// the number of words operated on, where 'w' means single word and 'tw'
// means triple word. Unless otherwise noted the size of the output is
// implied by the inputs: Mulw takes two single-word inputs and produces
// a double-word result.
package bn

import "math/bits"

// Word is a single machine word as used by the arithmetic layer.
type Word uint

const (
	wordBits = bits.UintSize
	wordHalf = wordBits / 2
	loMask   = ^Word(0) >> wordHalf
)

// CtNeZero returns 1 if w is nonzero and 0 otherwise, in constant time.
func CtNeZero(w Word) Word {
	return (w | ^(w - 1)) >> (wordBits - 1)
}

// CtNeZeroMask returns an all-ones word if w is nonzero and zero otherwise.
func CtNeZeroMask(w Word) Word {
	return 0 - CtNeZero(w)
}

// CtEqZero returns 1 if w is zero and 0 otherwise, in constant time.
func CtEqZero(w Word) Word {
	return 1 - CtNeZero(w)
}

// CtEqZeroMask returns an all-ones word if w is zero and zero otherwise.
func CtEqZeroMask(w Word) Word {
	return 0 - CtEqZero(w)
}

// Addw computes (carry:r0) = a + b, producing a double-word result. The
// carry is always 0 or 1.
func Addw(a, b Word) (carry, r0 Word) {
	c1 := a | b
	c2 := a & b
	r0 = a + b
	carry = ((c1 &^ r0) | c2) >> (wordBits - 1)
	return carry, r0
}

// AddwAddw computes (carry:r0) = a + b + c, producing a double-word
// result.
func AddwAddw(a, b, c Word) (carry, r0 Word) {
	r1, r0 := Addw(a, b)
	carry, r0 = Addw(r0, c)
	return r1 + carry, r0
}

// Subw computes r0 = a - b, producing a single-word result and borrow.
// The borrow is always 0 or 1.
func Subw(a, b Word) (borrow, r0 Word) {
	r0 = a - b
	borrow = ((r0 | (b &^ a)) & (b | ^a)) >> (wordBits - 1)
	return borrow, r0
}

// SubwSubw computes r0 = a - b - c, producing a single-word result and
// borrow.
func SubwSubw(a, b, c Word) (borrow, r0 Word) {
	b1, r0 := Subw(a, b)
	b2, r0 := Subw(r0, c)
	return b1 + b2, r0
}

// Mulw computes the full product (r1:r0) = a * b without using a wider
// integer type.
//
// The product can be rewritten as:
//
//	a * b = (hi(a) * 2^(W/2) + lo(a)) * (hi(b) * 2^(W/2) + lo(b))
//	      = hi(a) * hi(b) * 2^W +
//	        hi(a) * lo(b) * 2^(W/2) +
//	        hi(b) * lo(a) * 2^(W/2) +
//	        lo(a) * lo(b)
//
// Each of the four half-word multiplications fits in a single word, so
// the terms can be partitioned and summed across (r1:r0) with bitwise
// carry propagation.
func Mulw(a, b Word) (r1, r0 Word) {
	ah := a >> wordHalf
	al := a & loMask
	bh := b >> wordHalf
	bl := b & loMask

	h := ah * bh
	l := al * bl

	// (ah * bl) << wordHalf, partitioned across h:l with carry.
	x := ah * bl
	h += x >> wordHalf
	x <<= wordHalf
	c1 := l | x
	c2 := l & x
	l += x
	h += ((c1 &^ l) | c2) >> (wordBits - 1)

	// (bh * al) << wordHalf, partitioned across h:l with carry.
	x = bh * al
	h += x >> wordHalf
	x <<= wordHalf
	c1 = l | x
	c2 = l & x
	l += x
	h += ((c1 &^ l) | c2) >> (wordBits - 1)

	return h, l
}

// MulwLo returns the low word of a * b.
func MulwLo(a, b Word) Word {
	return a * b
}

// MulwHi returns the high word of a * b.
func MulwHi(a, b Word) Word {
	h, _ := Mulw(a, b)
	return h
}

// MulwAddw computes (r1:r0) = a * b + c, producing a double-word result.
func MulwAddw(a, b, c Word) (r1, r0 Word) {
	r1, r0 = Mulw(a, b)
	carry, r0 := Addw(r0, c)
	return r1 + carry, r0
}

// MulwAddwAddw computes (r1:r0) = a * b + c + d, producing a double-word
// result.
func MulwAddwAddw(a, b, c, d Word) (r1, r0 Word) {
	r1, r0 = MulwAddw(a, b, c)
	carry, r0 := Addw(r0, d)
	return r1 + carry, r0
}

// MulwAddtw computes (r2:r1:r0) = a * b + (c2:c1:c0), where a and b are
// single words and (c2:c1:c0) is a triple word, producing a triple-word
// result. The caller must ensure that the inputs provided do not result
// in c2 overflowing.
func MulwAddtw(a, b, c2, c1, c0 Word) (r2, r1, r0 Word) {
	x1, x0 := Mulw(a, b)
	carry, r0 := Addw(c0, x0)
	x1 += carry
	carry, r1 = Addw(c1, x1)
	r2 = c2 + carry
	return r2, r1, r0
}

package codec

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	maxDecimalScale = 28
	scaleMask       = 0x00FF0000
	signMask        = 0x80000000
)

// maxCoefficient is the largest 96-bit unsigned coefficient
var maxCoefficient = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 96), big.NewInt(1))

func putDecimal(dst []byte, d decimal.Decimal) error {
	if d.Exponent() < -maxDecimalScale {
		d = d.Round(maxDecimalScale)
	}

	coef := d.Coefficient()
	exp := d.Exponent()
	if exp > 0 {
		coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		exp = 0
	}

	negative := coef.Sign() < 0
	coef.Abs(coef)
	if coef.Cmp(maxCoefficient) > 0 {
		return ErrSalaryOverflow
	}

	var raw [12]byte
	coef.FillBytes(raw[:])

	flags := uint32(-exp) << 16
	if negative {
		flags |= signMask
	}

	binary.LittleEndian.PutUint32(dst[0:], binary.BigEndian.Uint32(raw[8:12]))
	binary.LittleEndian.PutUint32(dst[4:], binary.BigEndian.Uint32(raw[4:8]))
	binary.LittleEndian.PutUint32(dst[8:], binary.BigEndian.Uint32(raw[0:4]))
	binary.LittleEndian.PutUint32(dst[12:], flags)
	return nil
}

func getDecimal(src []byte) (decimal.Decimal, error) {
	lo := binary.LittleEndian.Uint32(src[0:])
	mid := binary.LittleEndian.Uint32(src[4:])
	hi := binary.LittleEndian.Uint32(src[8:])
	flags := binary.LittleEndian.Uint32(src[12:])

	if flags&^uint32(scaleMask|signMask) != 0 {
		return decimal.Decimal{}, fmt.Errorf("reserved flag bits set: %#08x", flags)
	}
	scale := (flags & scaleMask) >> 16
	if scale > maxDecimalScale {
		return decimal.Decimal{}, fmt.Errorf("scale %d exceeds %d", scale, maxDecimalScale)
	}

	var raw [12]byte
	binary.BigEndian.PutUint32(raw[0:], hi)
	binary.BigEndian.PutUint32(raw[4:], mid)
	binary.BigEndian.PutUint32(raw[8:], lo)

	coef := new(big.Int).SetBytes(raw[:])
	if flags&signMask != 0 {
		if coef.Sign() == 0 {
			return decimal.Decimal{}, fmt.Errorf("negative zero")
		}
		coef.Neg(coef)
	}

	return decimal.NewFromBigInt(coef, -int32(scale)), nil
}

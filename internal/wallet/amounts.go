package wallet

import "math/big"

// weiPerToken is 10^18, the wei value of one whole S token.
var weiPerToken = new(big.Float).SetFloat64(1e18)

// TokenToWei converts an S amount to wei, truncating sub-wei precision.
func TokenToWei(amount float64) *big.Int {
	f := new(big.Float).SetFloat64(amount)
	f.Mul(f, weiPerToken)
	wei, _ := f.Int(nil)
	return wei
}

// WeiToToken converts a wei amount to S.
func WeiToToken(wei *big.Int) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, weiPerToken)
	out, _ := f.Float64()
	return out
}

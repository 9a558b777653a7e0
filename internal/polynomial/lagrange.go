// Package polynomial implements the Lagrange-interpolation machinery the
// threshold signing aggregation step needs, over the secp256k1 scalar
// field: Lagrange(ids) returns each party's coefficient for
// reconstructing the value at x=0 from evaluations at the parties'
// indices.
package polynomial

import (
	"github.com/luxfi/stealthmpc/internal/party"
	"github.com/luxfi/stealthmpc/internal/secp"
)

// evalPoint maps a party index to its Shamir evaluation point. Index 0 is
// reserved for the secret, so evaluation points are offset by one.
func evalPoint(id party.ID) *secp.Scalar {
	return secp.ScalarFromUint64(uint64(id) + 1)
}

// Lagrange computes, for each id in ids, the coefficient L_id(0) such that
// sum_i L_i(0) * f(i) = f(0) for any polynomial f of degree < len(ids)
// evaluated at the parties' points.
func Lagrange(ids party.IDSlice) map[party.ID]*secp.Scalar {
	coeffs := make(map[party.ID]*secp.Scalar, len(ids))
	for _, i := range ids {
		xi := evalPoint(i)
		num := secp.ScalarFromUint64(1)
		den := secp.ScalarFromUint64(1)
		for _, j := range ids {
			if j == i {
				continue
			}
			xj := evalPoint(j)
			// num *= (0 - xj) = -xj
			num = num.Mul(xj.Negate())
			// den *= (xi - xj)
			den = den.Mul(xi.Sub(xj))
		}
		coeffs[i] = num.Mul(den.Inverse())
	}
	return coeffs
}

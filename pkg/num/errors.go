// SPDX-License-Identifier: Apache-2.0

package num

import "errors"

var (
	ErrType           = errors.New("value is not a number")
	ErrDomain         = errors.New("number is not finite")
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("result is out of the float64 range")
	ErrSyntax         = errors.New("invalid numerical value")
)

// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"errors"

	"github.com/xataio/commons/pkg/num"
)

var ErrNoData = errors.New("no data was added")

// Aggregate accumulates numbers one at a time. Implementations are not safe
// for concurrent use.
type Aggregate interface {
	Reset()
	// Add validates value before touching any state, so a failed call
	// leaves the aggregate unchanged.
	Add(value num.Number) error
}

// Update adds values in order, skipping the None gaps. It stops at the first
// invalid value.
func Update(agg Aggregate, values []num.Number) error {
	for _, v := range values {
		if v.IsNone() {
			continue
		}
		if err := agg.Add(v); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSeq is Update for values produced by a callback based iterator.
func UpdateSeq(agg Aggregate, seq func(yield func(num.Number) bool)) error {
	var err error
	seq(func(v num.Number) bool {
		if v.IsNone() {
			return true
		}
		err = agg.Add(v)
		return err == nil
	})
	return err
}

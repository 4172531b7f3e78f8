// SPDX-License-Identifier: Apache-2.0

package json

import (
	"io"

	"github.com/bytedance/sonic"
)

// api follows encoding/json behaviour, so values implementing json.Marshaler
// (num.Number, stats.Record) are encoded the same as with the stdlib.
var api = sonic.ConfigStd

func Unmarshal(b []byte, v any) error {
	return api.Unmarshal(b, v)
}

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Write encodes v to w, indented with a tab, followed by a newline.
func Write(w io.Writer, v any) error {
	b, err := MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

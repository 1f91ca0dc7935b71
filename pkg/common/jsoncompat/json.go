// Package jsoncompat routes all JSON encoding in the service through sonic
// configured to behave like encoding/json.
package jsoncompat

import (
	"errors"
	"io"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

var errNotObject = errors.New("json value is not an object")

var api = sonic.ConfigStd

// Marshal encodes v with the standard compatible sonic config.
func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

// Unmarshal decodes data into v with the standard compatible sonic config.
func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }

func NewEncoder(w io.Writer) sonic.Encoder { return api.NewEncoder(w) }

func NewDecoder(r io.Reader) sonic.Decoder { return api.NewDecoder(r) }

// ObjectKeys returns the member names of the JSON object in data in the
// order they appear. Repeated names are reported once.
func ObjectKeys(data []byte) ([]string, error) {
	root, err := sonic.Get(data)
	if err != nil {
		return nil, err
	}
	if root.TypeSafe() != ast.V_OBJECT {
		return nil, errNotObject
	}
	var keys []string
	seen := make(map[string]struct{})
	err = root.ForEach(func(path ast.Sequence, _ *ast.Node) bool {
		if path.Key == nil {
			return true
		}
		if _, ok := seen[*path.Key]; !ok {
			seen[*path.Key] = struct{}{}
			keys = append(keys, *path.Key)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

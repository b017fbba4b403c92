package element

import (
	"encoding/json"
	"strconv"

	"github.com/ducflair/ducgo/duerr"
)

func marshalStrings(values []string) (string, error) {
	b, err := json.Marshal(values)
	if err != nil {
		return "", duerr.Wrap(err, duerr.InvalidData, "element: marshal string list")
	}
	return string(b), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "element: unmarshal string list")
	}
	return out, nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

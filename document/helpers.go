package document

import (
	"encoding/json"
	"time"

	"github.com/ducflair/ducgo/duerr"
)

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func timeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func marshalLocalization(m map[string]string) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "document: marshal block localization")
	}
	return string(b), nil
}

func unmarshalLocalization(raw *string) (map[string]string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(*raw), &out); err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "document: unmarshal block localization")
	}
	return out, nil
}

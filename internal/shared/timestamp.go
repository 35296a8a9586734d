package shared

import (
	"encoding/json"
	"time"
)

// Timestamp wraps time.Time with the JSON shape clients depend on:
// seconds since the epoch plus two ISO-8601 string renderings.
type Timestamp struct {
	time.Time
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

type timestampJSON struct {
	SecondsSinceEpoch float64 `json:"secondsSinceEpoch"`
	ISO8601Full       string  `json:"iso8601Full"`
	ISO8601           string  `json:"iso8601"`
}

// MarshalJSON encodes the timestamp as an object rather than a bare string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(timestampJSON{
		SecondsSinceEpoch: float64(t.UnixNano()) / float64(time.Second),
		ISO8601Full:       t.Format("2006-01-02T15:04:05Z0700"),
		ISO8601:           t.Format("2006-01-02 15:04:05"),
	})
}

// UnmarshalJSON restores a timestamp from its object form.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var obj timestampJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	sec := int64(obj.SecondsSinceEpoch)
	nsec := int64((obj.SecondsSinceEpoch - float64(sec)) * float64(time.Second))
	t.Time = time.Unix(sec, nsec).UTC()
	return nil
}

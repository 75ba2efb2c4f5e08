package table

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	timeProperty = "ReadAt"
	edmDateTime  = "Edm.DateTime"
)

// system properties of a table entity that are not reading fields.
var systemProperties = map[string]bool{
	"PartitionKey": true,
	"RowKey":       true,
	"Timestamp":    true,
	timeProperty:   true,
}

func encodeEntity(r Reading, rowKey string) ([]byte, error) {
	ent := make(map[string]any, len(r.Fields)+4)
	for k, v := range r.Fields {
		if systemProperties[k] || strings.Contains(k, "@odata.") || strings.HasPrefix(k, "odata.") {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode field %s: %w", k, err)
			}
			v = string(b)
		}
		ent[k] = v
	}
	ent["PartitionKey"] = r.DeviceID
	ent["RowKey"] = rowKey
	ent[timeProperty] = r.Time.UTC().Format(time.RFC3339Nano)
	ent[timeProperty+"@odata.type"] = edmDateTime
	return json.Marshal(ent)
}

func decodeEntity(data []byte) (Reading, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Reading{}, fmt.Errorf("decode reading: %w", err)
	}
	r := Reading{Fields: make(map[string]any, len(raw))}
	r.DeviceID, _ = raw["PartitionKey"].(string)
	if s, ok := raw[timeProperty].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			r.Time = t
		}
	}
	for k, v := range raw {
		if systemProperties[k] || strings.Contains(k, "@odata.") || strings.HasPrefix(k, "odata.") {
			continue
		}
		r.Fields[k] = v
	}
	return r, nil
}

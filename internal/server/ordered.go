package server

import (
	"bytes"
	"encoding/json"
)

// orderedObject marshals as a JSON object whose keys keep insertion order,
// so clients see columns in database order.
type orderedObject struct {
	keys   []string
	values map[string]any
}

func newOrderedObject(capacity int) orderedObject {
	return orderedObject{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

func (o *orderedObject) set(key string, value any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

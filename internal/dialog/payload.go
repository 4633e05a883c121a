package dialog

// Payload values come back from JSONB, so numbers are float64 after a round
// trip and may be int/int64 before one.

func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func GetFloat(p Payload, key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func GetInt64(p Payload, key string) (int64, bool) {
	f, ok := GetFloat(p, key)
	return int64(f), ok
}

// Clone returns a shallow copy so a step can extend the payload without
// touching the previous state.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

package config

// SecretStringValue replaces secrets in dumps and logs.
const SecretStringValue = "<secret>"

// SecretString holds credentials (network tokens) which must not leak into
// configuration dumps, debug reports or logs.
type SecretString string

// Reveal returns actual value.
func (s SecretString) Reveal() string {
	return string(s)
}

// String implements fmt.Stringer and never shows the actual value.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// MarshalJSON implements json.Marshaler to hide the actual value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML implements yaml.Marshaler to hide the actual value.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// WriteJSON marshals v with two-space indentation and writes it atomically.
// Angle brackets and ampersands are written literally, so include lines such
// as "#include <vector>" stay readable in the artifacts.
func WriteJSON(p Provider, path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("storage: marshal %s: %w", path, err)
	}
	return p.Write(path, unescapeHTML(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))))
}

// unescapeHTML undoes the <, > and & escapes that nested
// json.Marshaler implementations emit regardless of the encoder setting.
// Escaped backslashes are copied as pairs, so a literal `<` in a string
// is left alone.
func unescapeHTML(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u00`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "003c":
				out = append(out, '<')
				i += 5
				continue
			case "003e":
				out = append(out, '>')
				i += 5
				continue
			case "0026":
				out = append(out, '&')
				i += 5
				continue
			}
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// ReadJSON reads path and unmarshals it into v.
func ReadJSON(p Provider, path string, v any) error {
	data, err := p.Read(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: decode %s: %w", path, err)
	}
	return nil
}

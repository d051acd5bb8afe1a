package output

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter writes the result as one indented JSON document.
type JSONFormatter struct{}

// Format implements Formatter.
func (JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func init() {
	Register("json", func() Formatter { return JSONFormatter{} })
}

var _ Formatter = JSONFormatter{}

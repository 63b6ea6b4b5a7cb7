package converters

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// NDJSONContentType is the media type of newline-delimited JSON streams.
const NDJSONContentType = "application/x-ndjson"

// NDJSONEncoder writes one JSON document per line and flushes after each
// so clients see progress as it happens.
type NDJSONEncoder struct {
	enc     *json.Encoder
	flusher http.Flusher
}

func NewNDJSONEncoder(w io.Writer) *NDJSONEncoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	e := &NDJSONEncoder{enc: enc}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Encode writes v followed by a newline.
func (e *NDJSONEncoder) Encode(v interface{}) error {
	if err := e.enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode stream line: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

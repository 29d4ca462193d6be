package timer

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema describes the GraphQL-over-HTTP response envelope: a
// JSON object whose errors member, when present, is a list.
var envelopeSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"properties": {
		"data": {},
		"errors": {"type": ["array", "null"]}
	}
}`)

// ProtocolError reports a response body that does not follow the
// GraphQL response envelope. Raw holds the offending bytes so the
// operator can diagnose what the server actually sent.
type ProtocolError struct {
	Reason string
	Raw    []byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s; body: %s", e.Reason, e.Raw)
}

// classify decides whether a response body represents a successful or
// failed field resolution. A non-null data member wins over errors; a
// body with neither is an unrecoverable protocol violation.
func classify(body []byte) (Status, error) {
	if !gjson.ValidBytes(body) {
		return 0, &ProtocolError{Reason: "response is not valid JSON", Raw: body}
	}

	check, err := gojsonschema.Validate(envelopeSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return 0, &ProtocolError{Reason: fmt.Sprintf("validating response envelope: %v", err), Raw: body}
	}
	if !check.Valid() {
		return 0, &ProtocolError{
			Reason: fmt.Sprintf("response is not a GraphQL envelope: %v", check.Errors()),
			Raw:    body,
		}
	}

	if data := gjson.GetBytes(body, "data"); data.Exists() && data.Type != gjson.Null {
		return Success, nil
	}
	if errs := gjson.GetBytes(body, "errors"); errs.Exists() && errs.Type != gjson.Null {
		return Failure, nil
	}
	return 0, &ProtocolError{Reason: "response has neither data nor errors", Raw: body}
}

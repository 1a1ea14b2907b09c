package worker

import (
	"encoding/json"
	"fmt"

	"github.com/verdant-labs/cropsight/core/classify"
	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/schema"
)

// ReadyMarker is the single readiness line emitted on the protocol channel
// before the first request is read.
const ReadyMarker = "READY"

// Request is one inbound protocol line.
type Request struct {
	ImagePath string `json:"imagePath"`
}

// Response is one outbound protocol line: either data or an error, never
// both.
type Response struct {
	Success   bool             `json:"success"`
	Data      *classify.Result `json:"data,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
}

// fallbackResponseLine is emitted when a response itself fails to encode,
// so the one-line-per-request invariant survives even a marshal bug.
const fallbackResponseLine = `{"success":false,"error":"failed to encode response","error_type":"internal_failure"}`

func marshalResponse(response Response) ([]byte, error) {
	return json.Marshal(response)
}

func successResponse(result classify.Result) Response {
	return Response{Success: true, Data: &result}
}

func failureResponse(err error) Response {
	errorType := string(errors.CategoryOf(err))
	if errorType == "" {
		errorType = string(errors.CategoryInternalFailure)
	}
	return Response{Success: false, Error: err.Error(), ErrorType: errorType}
}

// parseRequest validates one protocol line against the request schema
// before unmarshalling. Every failure is an invalid_request: the caller
// answers it and keeps serving.
func parseRequest(line []byte) (Request, error) {
	if err := schema.ValidateRequest(line); err != nil {
		return Request{}, errors.Wrap(fmt.Errorf("invalid request: %w", err), errors.CategoryInvalidRequest, "request_schema_invalid", false)
	}
	var request Request
	if err := json.Unmarshal(line, &request); err != nil {
		return Request{}, errors.Wrap(fmt.Errorf("parse request: %w", err), errors.CategoryInvalidRequest, "request_parse_failed", false)
	}
	return request, nil
}

package errors

import (
	"encoding/json"
	"net/http"
)

// HTTPError is the JSON body written for error responses on the admin API.
type HTTPError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// ToHTTPError converts an error to the HTTP wire representation plus status code
func ToHTTPError(err error) (int, *HTTPError) {
	if err == nil {
		return http.StatusOK, nil
	}

	var customErr *Error
	if As(err, &customErr) {
		return customErr.Code.HTTPStatus(), &HTTPError{
			Code:    string(customErr.Code),
			Message: customErr.Message,
			Meta:    customErr.Meta,
		}
	}

	return http.StatusInternalServerError, &HTTPError{
		Code:    string(CodeInternal),
		Message: err.Error(),
	}
}

// WriteHTTP serializes an error onto an HTTP response. A nil error writes
// nothing so handlers can call it unconditionally on their error path.
func WriteHTTP(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	status, body := ToHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

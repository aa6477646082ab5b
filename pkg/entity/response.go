package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout is returned by a send that got no answer in
	// time.
	ErrTimeout = errors.New("response timeout")

	// ErrConnectionRequired is returned by a send on a client
	// that is not connected.
	ErrConnectionRequired = errors.New("connection required")
)

// TransportError reports a failure of the underlying connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackError is an error the server sent back in a response.
type BackError struct {
	Name    string         `json:"name"`
	Group   string         `json:"group,omitempty"`
	Type    string         `json:"type"`
	Custom  bool           `json:"custom"`
	Message string         `json:"message,omitempty"`
	Info    map[string]any `json:"info,omitempty"`
}

func (e BackError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%s): %s", e.Name, e.Type, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Name, e.Type)
}

// Response is the answer to a request.
type Response struct {
	Successful bool        `json:"successful"`
	Result     any         `json:"result,omitempty"`
	Errors     []BackError `json:"errors,omitempty"`
}

// String renders the response for failure messages.
func (r *Response) String() string {
	if r == nil {
		return "Response: <nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Response: successful=%t", r.Successful)
	if r.Result != nil {
		result, err := json.Marshal(r.Result)
		if err != nil {
			fmt.Fprintf(&b, " result=%v", r.Result)
		} else {
			fmt.Fprintf(&b, " result=%s", result)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, " error=[%s]", e.Error())
	}
	return b.String()
}

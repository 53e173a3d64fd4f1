package api

import "errors"

var ErrInvalidRequest = errors.New("invalid_request")

// paramError reports a bad query parameter of an inspect or report call.
type paramError struct {
	param string
	msg   string
}

func (e paramError) Error() string {
	return e.msg
}

func (e paramError) Unwrap() error {
	return ErrInvalidRequest
}

func newParamError(param, msg string) error {
	return paramError{param: param, msg: msg}
}

// errorParam returns the offending parameter name of err, if any.
func errorParam(err error) string {
	var pe paramError
	if errors.As(err, &pe) {
		return pe.param
	}
	return ""
}

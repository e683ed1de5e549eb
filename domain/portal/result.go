package portal

import "errors"

// OperationResult reports the outcome of an availability probe without raising.
// A successful result has ErrorCode 0 and no message; a failed one has both set.
type OperationResult struct {
	Success      bool   `json:"success"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message,omitempty"`
	Err          error  `json:"-"`
}

// Succeeded returns a successful result.
func Succeeded() OperationResult {
	return OperationResult{Success: true}
}

// Failed returns a failed result, filling a zero code or empty message so the
// result always satisfies the failure invariant.
func Failed(code int, message string, cause error) OperationResult {
	if code == 0 {
		code = ProbeFailureCode
	}
	if message == "" && cause != nil {
		message = cause.Error()
	}
	if message == "" {
		message = KindConstructionFailure.Message()
	}
	return OperationResult{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: message,
		Err:          cause,
	}
}

// FailedFrom builds a probe failure from err. A portal error contributes its fixed
// message; any other error contributes its text.
func FailedFrom(err error) OperationResult {
	var pe *Error
	if errors.As(err, &pe) {
		return Failed(ProbeFailureCode, pe.Message, err)
	}
	return Failed(ProbeFailureCode, "", err)
}

// Valid reports whether the result satisfies the success/failure invariant.
func (r OperationResult) Valid() bool {
	if r.Success {
		return r.ErrorCode == 0 && r.ErrorMessage == ""
	}
	return r.ErrorCode != 0 && r.ErrorMessage != ""
}

// AsError converts a failed result into a construction failure. It returns nil
// for a successful result.
func (r OperationResult) AsError() error {
	if r.Success {
		return nil
	}
	return &Error{
		Kind:    KindConstructionFailure,
		Code:    r.ErrorCode,
		Message: r.ErrorMessage,
		Cause:   r.Err,
	}
}

package flow

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes flow failures.
type ErrorCode string

const (
	// ErrCodeBadParams indicates the design parameters are invalid.
	ErrCodeBadParams ErrorCode = "BAD_PARAMS"

	// ErrCodeGenerate indicates layout generation failed.
	ErrCodeGenerate ErrorCode = "GENERATE_FAILED"

	// ErrCodeExtract indicates geometric extraction found an open or
	// short, or extraction itself failed.
	ErrCodeExtract ErrorCode = "EXTRACT_FAILED"

	// ErrCodeSchematic indicates schematic generation failed.
	ErrCodeSchematic ErrorCode = "SCHEMATIC_FAILED"

	// ErrCodeLVSFailed indicates layout and schematic netlists differ.
	ErrCodeLVSFailed ErrorCode = "LVS_FAILED"

	// ErrCodeTestbench indicates sweep expansion or testbench
	// construction failed.
	ErrCodeTestbench ErrorCode = "TESTBENCH_FAILED"

	// ErrCodeSim indicates simulation failed.
	ErrCodeSim ErrorCode = "SIM_FAILED"

	// ErrCodeStore indicates a results database write failed.
	ErrCodeStore ErrorCode = "STORE_FAILED"
)

// FlowError is a structured error from a flow run: which stage of
// which run failed, and why.
type FlowError struct {
	Code     ErrorCode
	Stage    string
	RunToken string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	if e.RunToken != "" {
		return fmt.Sprintf("%s: %s (run=%s, stage=%s)", e.Code, e.Message, e.RunToken, e.Stage)
	}
	return fmt.Sprintf("%s: %s (stage=%s)", e.Code, e.Message, e.Stage)
}

// Unwrap returns the underlying error.
func (e *FlowError) Unwrap() error {
	return e.Err
}

// IsLVSFailure reports whether err is an LVS mismatch. Uses errors.As
// to handle wrapped errors.
func IsLVSFailure(err error) bool {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code == ErrCodeLVSFailed
	}
	return false
}

package entity

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced in API responses.
const (
	CodeDuplicateDocument = "DUPLICATE_DOCUMENT"
	CodeInvalidFile       = "INVALID_FILE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeSigningFailed     = "SIGNING_FAILED"
	CodeNoSigners         = "NO_SIGNERS"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeAlreadyActed      = "ALREADY_ACTED"
	CodeOutOfOrder        = "OUT_OF_ORDER"
)

// DomainError is a rejected operation. State errors carry the current
// authoritative document status so the caller can reconcile its view.
type DomainError struct {
	Code    string
	Message string
	Status  DocumentStatus
}

func (e *DomainError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: %s (current status: %s)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsDomainError unwraps err into a DomainError if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func NewDuplicateDocument(existingStatus DocumentStatus, message string) *DomainError {
	return &DomainError{Code: CodeDuplicateDocument, Message: message, Status: existingStatus}
}

func NewInvalidFile(message string) *DomainError {
	return &DomainError{Code: CodeInvalidFile, Message: message}
}

func NewInvalidTransition(current DocumentStatus, attempted string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot %s a document in status %q", attempted, current),
		Status:  current,
	}
}

func NewNotFound(id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("document %s not found", id)}
}

func NewSigningFailed(err error) *DomainError {
	return &DomainError{Code: CodeSigningFailed, Message: fmt.Sprintf("signing primitive failed: %v", err)}
}

func NewNoSigners() *DomainError {
	return &DomainError{Code: CodeNoSigners, Message: "signer list is empty after de-duplication"}
}

func NewUnauthorized(identity string, current DocumentStatus) *DomainError {
	return &DomainError{
		Code:    CodeUnauthorized,
		Message: fmt.Sprintf("identity %q is not authorized to act on this document", identity),
		Status:  current,
	}
}

func NewAlreadyActed(identity string, signerStatus SignerStatus, current DocumentStatus) *DomainError {
	return &DomainError{
		Code:    CodeAlreadyActed,
		Message: fmt.Sprintf("signer %q has already acted (signer status: %s)", identity, signerStatus),
		Status:  current,
	}
}

func NewOutOfOrder(waitingFor string, current DocumentStatus) *DomainError {
	return &DomainError{
		Code:    CodeOutOfOrder,
		Message: fmt.Sprintf("sequential signing: waiting for earlier signer %q", waitingFor),
		Status:  current,
	}
}

package emergency

import (
	apperrors "github.com/guji3/ping/pkg/errors"
)

// Fatal pipeline error codes. Everything else the pipeline encounters is
// degraded locally and never surfaces as an error.
const (
	CodeDeviceNotRegistered  = 40401
	CodeNoContactsConfigured = 40901
	CodeTranscriptionFailed  = 50201
	CodeAuditPersistFailed   = 50301
)

func deviceNotRegistered(serial string) error {
	return apperrors.WithCodef(CodeDeviceNotRegistered, "device not registered: %s", serial)
}

func noContactsConfigured(userID uint) error {
	return apperrors.WithCodef(CodeNoContactsConfigured, "no active emergency contacts for user %d", userID)
}

func transcriptionFailed(err error) error {
	return apperrors.WrapCode(CodeTranscriptionFailed, err, "speech-to-text failed")
}

func auditPersistFailed(err error) error {
	return apperrors.WrapCode(CodeAuditPersistFailed, err, "failed to persist emergency record")
}

func IsDeviceNotRegistered(err error) bool {
	return apperrors.CodeOf(err) == CodeDeviceNotRegistered
}

func IsNoContactsConfigured(err error) bool {
	return apperrors.CodeOf(err) == CodeNoContactsConfigured
}

func IsTranscriptionFailed(err error) bool {
	return apperrors.CodeOf(err) == CodeTranscriptionFailed
}

func IsAuditPersistFailed(err error) bool {
	return apperrors.CodeOf(err) == CodeAuditPersistFailed
}

package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Taksonomi error service layer. Controller memetakan tipe ke HTTP status
// lewat HTTPStatus; service tidak pernah menyentuh kode HTTP langsung.

// ValidationError -> input tidak valid (kapasitas di luar range, field wajib
// kosong, nilai enum tidak dikenal). Tidak pernah di-retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError -> bentrok resource: reservasi overlap, nomor meja duplikat,
// transisi status ilegal. Detail opsional berisi entity yang bentrok.
type ConflictError struct {
	Message string
	Detail  interface{}
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError -> id tidak ditemukan di bawah tenant yang bersangkutan.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// InternalError -> kegagalan datastore / hal tak terduga. Pesan asli disimpan
// untuk log, caller hanya melihat pesan generik.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "internal error: " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

func NewInternalError(err error) *InternalError {
	return &InternalError{Err: err}
}

// HTTPStatus memetakan error taksonomi ke kode HTTP.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var ce *ConflictError
	var ne *NotFoundError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ne):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsConflict -> dipakai bulk executor untuk menghitung jumlah conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

package handler_test

import (
	"fmt"

	"panaderia/internal/service"
)

// The helpers below build errors of each kind the way the services do.

type kindErr struct {
	kind error
	msg  string
}

func (e *kindErr) Error() string { return e.msg }
func (e *kindErr) Unwrap() error { return e.kind }

func fmtNotFound(msg string) error { return &kindErr{kind: service.ErrNotFound, msg: msg} }
func fmtInvalid(msg string) error  { return &kindErr{kind: service.ErrInvalidInput, msg: msg} }

func fmtStore(err error) error   { return fmt.Errorf("op: %w: %w", service.ErrStoreFailure, err) }
func fmtGateway(err error) error { return fmt.Errorf("op: %w: %w", service.ErrGatewayFailure, err) }

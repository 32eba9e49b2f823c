package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the analytics and assistant services. Handlers map
// them to HTTP status codes with errors.Is.
var (
	ErrNotFound       = errors.New("no encontrado")
	ErrInvalidInput   = errors.New("entrada invalida")
	ErrGatewayFailure = errors.New("fallo del servicio de IA")
	ErrStoreFailure   = errors.New("base de datos no disponible")
)

// FalloConsulta is returned by the assistant pipeline once a query has been
// attributed to a session. It carries the elapsed time so the caller can tell
// a fast rejection from a timeout.
type FalloConsulta struct {
	Tipo            error
	Mensaje         string
	ExecutionTimeMs int64
	SessionID       uint
	Err             error
}

func (f *FalloConsulta) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Mensaje, f.Err)
	}
	return f.Mensaje
}

func (f *FalloConsulta) Unwrap() []error {
	errs := []error{f.Tipo}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

func gatewayErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrGatewayFailure, err)
}

// errorDominio carries a user-facing message under one of the error kinds.
type errorDominio struct {
	tipo    error
	mensaje string
}

func (e *errorDominio) Error() string { return e.mensaje }
func (e *errorDominio) Unwrap() error { return e.tipo }

func noEncontrado(mensaje string) error { return &errorDominio{tipo: ErrNotFound, mensaje: mensaje} }

func entradaInvalida(format string, args ...any) error {
	return &errorDominio{tipo: ErrInvalidInput, mensaje: fmt.Sprintf(format, args...)}
}

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// failure clasifica el resultado de un intento y decide si se reintenta.
type failure int

const (
	failureNone      failure = iota // póster resuelto
	failureTransient                // timeout o fallo de conexión: se reintenta
	failureTerminal                 // cualquier otra cosa: placeholder inmediato
)

func (f failure) String() string {
	switch f {
	case failureNone:
		return "success"
	case failureTransient:
		return "transient"
	default:
		return "terminal"
	}
}

// ErrNoPoster indica una respuesta 200 sin poster_path.
var ErrNoPoster = errors.New("respuesta sin poster_path")

// StatusError es una respuesta HTTP distinta de 200.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDB respondió HTTP %d", e.StatusCode)
}

// classify separa errores de red reintentables del resto.
func classify(err error) failure {
	if err == nil {
		return failureNone
	}

	// el llamador se fue: no tiene sentido reintentar
	if errors.Is(err, context.Canceled) {
		return failureTerminal
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return failureTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failureTransient
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return failureTransient
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return failureTransient
	}

	return failureTerminal
}

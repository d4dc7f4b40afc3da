package solicitudes

import (
	"fmt"
	"strings"
	"time"
)

// Banco identifies the bank whose statement parser handles the request.
type Banco string

const (
	BancoBanorte   Banco = "banorte"
	BancoBBVA      Banco = "bbva"
	BancoSantander Banco = "santander"
	BancoInbursa   Banco = "inbursa"
)

// ParseBanco normalizes and validates a bank name.
func ParseBanco(raw string) (Banco, error) {
	b := Banco(strings.ToLower(strings.TrimSpace(raw)))
	switch b {
	case BancoBanorte, BancoBBVA, BancoSantander, BancoInbursa:
		return b, nil
	}
	return "", fmt.Errorf("%w: banco no soportado: %q", ErrInvalidInput, raw)
}

// Resultado is the output artifact format recorded for a request.
type Resultado string

const (
	ResultadoXLSX Resultado = "xlsx"
	ResultadoZIP  Resultado = "zip"
)

// ParseResultado normalizes and validates an output format.
func ParseResultado(raw string) (Resultado, error) {
	r := Resultado(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case ResultadoXLSX, ResultadoZIP:
		return r, nil
	}
	return "", fmt.Errorf("%w: resultado no soportado: %q", ErrInvalidInput, raw)
}

// Ext returns the file extension for the format.
func (r Resultado) Ext() string {
	return string(r)
}

// Estado is the lifecycle state of a request. A record is created as
// processing and transitions exactly once to ok or fail.
type Estado string

const (
	EstadoOK         Estado = "ok"
	EstadoFail       Estado = "fail"
	EstadoProcessing Estado = "processing"
)

// ParseEstado normalizes and validates a lifecycle state.
func ParseEstado(raw string) (Estado, error) {
	e := Estado(strings.ToLower(strings.TrimSpace(raw)))
	switch e {
	case EstadoOK, EstadoFail, EstadoProcessing:
		return e, nil
	}
	return "", fmt.Errorf("%w: estado no soportado: %q", ErrInvalidInput, raw)
}

// Terminal reports whether the state admits no further transitions.
func (e Estado) Terminal() bool {
	return e == EstadoOK || e == EstadoFail
}

// EmpresaPlaceholder marks records whose company could not be determined.
const EmpresaPlaceholder = "SIN_EMPRESA"

// Solicitud is one document-processing request: the uploaded statement, the
// produced artifact and the lifecycle state, as stored in the ledger.
type Solicitud struct {
	ID            uint64
	ArchivoNombre string
	ArchivoTamano *int64
	ArchivoSHA256 string
	SalidaNombre  string
	SalidaTamano  *int64
	SalidaSHA256  string
	Banco         Banco
	Empresa       string
	SolicitadoEn  time.Time
	Resultado     Resultado
	Estado        Estado
	Error         string
	IPCliente     string
	DuracionMs    *int64
}

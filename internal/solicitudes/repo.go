package solicitudes

import (
	"context"
	"time"
)

// Filter narrows listing, stats and export queries. Zero values mean "any".
type Filter struct {
	Banco         Banco
	Empresa       string
	Resultado     Resultado
	Estado        Estado
	Desde         *time.Time
	Hasta         *time.Time
	Query         string
	ArchivoSHA256 string
}

// TerminalUpdate carries the fields written by the single terminal transition.
type TerminalUpdate struct {
	Estado       Estado
	SalidaNombre string
	SalidaTamano *int64
	SalidaSHA256 string
	Error        string
	DuracionMs   *int64
}

// Stats aggregates record counts per lifecycle state.
type Stats struct {
	Total      int `json:"total"`
	OK         int `json:"ok"`
	Fail       int `json:"fail"`
	Processing int `json:"processing"`
}

// Repo defines persistence operations for the request ledger.
//
// Complete must apply the terminal transition only while the record is still
// processing and report ErrTerminalState otherwise; that guard is the audit
// integrity contract of the ledger.
type Repo interface {
	Create(ctx context.Context, s Solicitud) (uint64, error)
	GetByID(ctx context.Context, id uint64) (Solicitud, error)
	Complete(ctx context.Context, id uint64, upd TerminalUpdate) error
	UpdateEmpresa(ctx context.Context, id uint64, empresa string) error
	List(ctx context.Context, f Filter, limit, offset int) ([]Solicitud, int, error)
	Stats(ctx context.Context, f Filter) (Stats, error)
	Empresas(ctx context.Context) ([]string, error)
	FindLatestOKByInputHash(ctx context.Context, sha string, resultado Resultado) (Solicitud, error)
}

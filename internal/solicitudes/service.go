package solicitudes

import (
	"context"
	"fmt"
	"strings"

	"extractor-backend/internal/shared/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service validates ledger operations before they reach the repository.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// CreateParams carries the fields known at intake time.
type CreateParams struct {
	ArchivoNombre string
	ArchivoTamano *int64
	ArchivoSHA256 string
	Banco         string
	Empresa       string
	Resultado     string
	IPCliente     string
}

// Create registers a new request in the processing state. An empty empresa is
// recorded under the placeholder so history filters stay usable.
func (s *Service) Create(ctx context.Context, p CreateParams) (Solicitud, error) {
	banco, err := ParseBanco(p.Banco)
	if err != nil {
		return Solicitud{}, err
	}
	resultado, err := ParseResultado(p.Resultado)
	if err != nil {
		return Solicitud{}, err
	}
	nombre := strings.TrimSpace(p.ArchivoNombre)
	if nombre == "" {
		return Solicitud{}, fmt.Errorf("%w: archivo_nombre requerido", ErrInvalidInput)
	}
	if p.ArchivoSHA256 != "" && !util.IsSHA256Hex(p.ArchivoSHA256) {
		return Solicitud{}, fmt.Errorf("%w: archivo_sha256 inválido", ErrInvalidInput)
	}
	empresa := strings.TrimSpace(p.Empresa)
	if empresa == "" {
		empresa = EmpresaPlaceholder
	}

	rec := Solicitud{
		ArchivoNombre: nombre,
		ArchivoTamano: p.ArchivoTamano,
		ArchivoSHA256: p.ArchivoSHA256,
		Banco:         banco,
		Empresa:       empresa,
		Resultado:     resultado,
		Estado:        EstadoProcessing,
		IPCliente:     strings.TrimSpace(p.IPCliente),
	}
	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Solicitud{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// SuccessParams carries the artifact metadata written on success.
type SuccessParams struct {
	SalidaNombre string
	SalidaTamano *int64
	SalidaSHA256 string
	DuracionMs   *int64
}

// CompleteSuccess closes a processing record as ok. The output name and hash
// are mandatory: an ok row without its artifact would be unusable for later
// downloads.
func (s *Service) CompleteSuccess(ctx context.Context, id uint64, p SuccessParams) error {
	nombre := strings.TrimSpace(p.SalidaNombre)
	if nombre == "" {
		return fmt.Errorf("%w: salida_nombre requerido", ErrInvalidInput)
	}
	if !util.IsSHA256Hex(p.SalidaSHA256) {
		return fmt.Errorf("%w: salida_sha256 inválido", ErrInvalidInput)
	}
	return s.repo.Complete(ctx, id, TerminalUpdate{
		Estado:       EstadoOK,
		SalidaNombre: nombre,
		SalidaTamano: p.SalidaTamano,
		SalidaSHA256: p.SalidaSHA256,
		DuracionMs:   p.DuracionMs,
	})
}

// CompleteFailure closes a processing record as fail with the error message.
func (s *Service) CompleteFailure(ctx context.Context, id uint64, message string, duracionMs *int64) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("%w: mensaje de error requerido", ErrInvalidInput)
	}
	return s.repo.Complete(ctx, id, TerminalUpdate{
		Estado:     EstadoFail,
		Error:      message,
		DuracionMs: duracionMs,
	})
}

// UpdateEmpresa replaces the company on a still-processing record, used when
// the parser discovers the real company after intake.
func (s *Service) UpdateEmpresa(ctx context.Context, id uint64, empresa string) error {
	empresa = strings.TrimSpace(empresa)
	if empresa == "" {
		return fmt.Errorf("%w: empresa requerida", ErrInvalidInput)
	}
	return s.repo.UpdateEmpresa(ctx, id, empresa)
}

func (s *Service) Get(ctx context.Context, id uint64) (Solicitud, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of matching records plus the unpaged total.
func (s *Service) List(ctx context.Context, f Filter, page, pageSize int) ([]Solicitud, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return s.repo.List(ctx, f, pageSize, (page-1)*pageSize)
}

// ListAll walks every matching record in pages, for CSV export.
func (s *Service) ListAll(ctx context.Context, f Filter) ([]Solicitud, error) {
	var all []Solicitud
	offset := 0
	for {
		batch, _, err := s.repo.List(ctx, f, maxPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < maxPageSize {
			return all, nil
		}
		offset += len(batch)
	}
}

func (s *Service) Stats(ctx context.Context, f Filter) (Stats, error) {
	return s.repo.Stats(ctx, f)
}

func (s *Service) Empresas(ctx context.Context) ([]string, error) {
	return s.repo.Empresas(ctx)
}

// FindReusable locates the most recent successful request for the same input
// and output format, if any.
func (s *Service) FindReusable(ctx context.Context, sha string, resultado Resultado) (Solicitud, error) {
	if !util.IsSHA256Hex(sha) {
		return Solicitud{}, fmt.Errorf("%w: archivo_sha256 inválido", ErrInvalidInput)
	}
	return s.repo.FindLatestOKByInputHash(ctx, sha, resultado)
}

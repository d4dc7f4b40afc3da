package extractions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"extractor-backend/internal/export"
	"extractor-backend/internal/extract"
	"extractor-backend/internal/shared/metrics"
	"extractor-backend/internal/shared/storage/object"
	"extractor-backend/internal/shared/telemetry"
	"extractor-backend/internal/shared/util"
	"extractor-backend/internal/solicitudes"
)

// ErrExtractionFailed marks pipeline errors that were recorded as a failed
// request, as opposed to rejected input that never entered the ledger.
var ErrExtractionFailed = errors.New("extraction failed")

const pdfContentType = "application/pdf"

var artifactContentTypes = map[solicitudes.Resultado]string{
	solicitudes.ResultadoXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	solicitudes.ResultadoZIP:  "application/zip",
}

// Service runs the extraction pipeline: hash and store the upload, open a
// ledger record, parse the statement, render the artifact, and close the
// record exactly once with the outcome.
type Service struct {
	ledger         *solicitudes.Service
	store          object.Store
	textOf         func(data []byte) (string, error)
	parserFor      func(banco string) (extract.Parser, error)
	reuseIdentical bool
	now            func() time.Time
}

func NewService(ledger *solicitudes.Service, store object.Store, reuseIdentical bool) *Service {
	return &Service{
		ledger:         ledger,
		store:          store,
		textOf:         extract.Text,
		parserFor:      extract.ForBanco,
		reuseIdentical: reuseIdentical,
		now:            time.Now,
	}
}

// Request is one extraction job as received from the upload endpoint.
type Request struct {
	Banco         string
	Empresa       string
	Resultado     string
	ArchivoNombre string
	IPCliente     string
	Data          []byte
}

// Result describes the finished job and where its artifact lives.
type Result struct {
	Solicitud    solicitudes.Solicitud
	ArtifactKey  string
	ArtifactName string
	ContentType  string
	Reused       bool
}

func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	started := s.now()

	if len(req.Data) == 0 {
		return Result{}, fmt.Errorf("%w: archivo vacío", solicitudes.ErrInvalidInput)
	}
	sha := util.SHA256Hex(req.Data)
	size := int64(len(req.Data))

	if _, err := s.store.Save(ctx, solicitudes.InputKey(sha), pdfContentType, bytes.NewReader(req.Data)); err != nil {
		return Result{}, fmt.Errorf("save input: %w", err)
	}

	sol, err := s.ledger.Create(ctx, solicitudes.CreateParams{
		ArchivoNombre: req.ArchivoNombre,
		ArchivoTamano: &size,
		ArchivoSHA256: sha,
		Banco:         req.Banco,
		Empresa:       req.Empresa,
		Resultado:     req.Resultado,
		IPCliente:     req.IPCliente,
	})
	if err != nil {
		return Result{}, err
	}
	metrics.IncExtractionStarted()

	if s.reuseIdentical {
		if res, ok := s.tryReuse(ctx, sol, sha, started); ok {
			return res, nil
		}
	}

	outName, outData, runErr := s.produce(ctx, &sol, req.ArchivoNombre, req.Data)
	duracion := s.elapsedMs(started)

	if runErr != nil {
		metrics.IncExtractionFailed()
		metrics.ObserveExtractionDurationMs(float64(duracion))
		if err := s.ledger.CompleteFailure(ctx, sol.ID, runErr.Error(), &duracion); err != nil {
			telemetry.Error("extraction.complete_failure", map[string]any{
				"solicitud_id": sol.ID,
				"error":        err.Error(),
			})
		}
		return Result{}, fmt.Errorf("%w: %v", ErrExtractionFailed, runErr)
	}

	outKey := solicitudes.OutputKey(sha, sol.Resultado)
	contentType := artifactContentTypes[sol.Resultado]
	if _, err := s.store.Save(ctx, outKey, contentType, bytes.NewReader(outData)); err != nil {
		metrics.IncExtractionFailed()
		if cErr := s.ledger.CompleteFailure(ctx, sol.ID, "no se pudo guardar la salida", &duracion); cErr != nil {
			telemetry.Error("extraction.complete_failure", map[string]any{
				"solicitud_id": sol.ID,
				"error":        cErr.Error(),
			})
		}
		return Result{}, fmt.Errorf("save output: %w", err)
	}

	outSize := int64(len(outData))
	if err := s.ledger.CompleteSuccess(ctx, sol.ID, solicitudes.SuccessParams{
		SalidaNombre: outName,
		SalidaTamano: &outSize,
		SalidaSHA256: util.SHA256Hex(outData),
		DuracionMs:   &duracion,
	}); err != nil {
		return Result{}, err
	}
	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(duracion))

	final, err := s.ledger.Get(ctx, sol.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Solicitud:    final,
		ArtifactKey:  outKey,
		ArtifactName: outName,
		ContentType:  contentType,
	}, nil
}

// tryReuse closes the new record against a previous identical upload's
// artifact, skipping parse and render. Every upload still gets its own
// ledger row.
func (s *Service) tryReuse(ctx context.Context, sol solicitudes.Solicitud, sha string, started time.Time) (Result, bool) {
	prev, err := s.ledger.FindReusable(ctx, sha, sol.Resultado)
	if err != nil {
		return Result{}, false
	}
	outKey := solicitudes.OutputKey(sha, sol.Resultado)
	exists, err := s.store.Exists(ctx, outKey)
	if err != nil || !exists {
		return Result{}, false
	}

	duracion := s.elapsedMs(started)
	if err := s.ledger.CompleteSuccess(ctx, sol.ID, solicitudes.SuccessParams{
		SalidaNombre: prev.SalidaNombre,
		SalidaTamano: prev.SalidaTamano,
		SalidaSHA256: prev.SalidaSHA256,
		DuracionMs:   &duracion,
	}); err != nil {
		return Result{}, false
	}
	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(duracion))
	telemetry.Info("extraction.reused", map[string]any{
		"solicitud_id": sol.ID,
		"previa_id":    prev.ID,
		"sha256":       sha,
	})

	final, err := s.ledger.Get(ctx, sol.ID)
	if err != nil {
		return Result{}, false
	}
	return Result{
		Solicitud:    final,
		ArtifactKey:  outKey,
		ArtifactName: prev.SalidaNombre,
		ContentType:  artifactContentTypes[sol.Resultado],
		Reused:       true,
	}, true
}

// produce parses the statement and renders the requested artifact. When the
// caller gave no company and the parser found one, the ledger row is updated
// before it turns terminal.
func (s *Service) produce(ctx context.Context, sol *solicitudes.Solicitud, archivoNombre string, data []byte) (string, []byte, error) {
	text, err := s.textOf(data)
	if err != nil {
		return "", nil, err
	}
	parser, err := s.parserFor(string(sol.Banco))
	if err != nil {
		return "", nil, err
	}
	st, err := parser.Parse(text)
	if err != nil {
		return "", nil, err
	}

	if sol.Empresa == solicitudes.EmpresaPlaceholder && st.Empresa != "" {
		if err := s.ledger.UpdateEmpresa(ctx, sol.ID, st.Empresa); err != nil {
			telemetry.Warn("extraction.update_empresa", map[string]any{
				"solicitud_id": sol.ID,
				"error":        err.Error(),
			})
		} else {
			sol.Empresa = st.Empresa
		}
	} else if st.Empresa == "" {
		st.Empresa = sol.Empresa
	}

	base := baseName(archivoNombre)
	var xlsxBuf bytes.Buffer
	if err := export.WriteXLSX(&xlsxBuf, st, archivoNombre); err != nil {
		return "", nil, err
	}

	if sol.Resultado == solicitudes.ResultadoZIP {
		var zipBuf bytes.Buffer
		if err := export.WriteZIP(&zipBuf, st, base+".xlsx", xlsxBuf.Bytes()); err != nil {
			return "", nil, err
		}
		return base + ".zip", zipBuf.Bytes(), nil
	}
	return base + ".xlsx", xlsxBuf.Bytes(), nil
}

func baseName(archivoNombre string) string {
	name := strings.TrimSpace(archivoNombre)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if name == "" {
		name = "salida"
	}
	return name
}

func (s *Service) elapsedMs(started time.Time) int64 {
	ms := s.now().Sub(started).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return ms
}

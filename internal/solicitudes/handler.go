package solicitudes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"extractor-backend/internal/shared/server/respond"
	"extractor-backend/internal/shared/storage/object"
)

const contentTypePDF = "application/pdf"

var artifactContentTypes = map[Resultado]string{
	ResultadoXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ResultadoZIP:  "application/zip",
}

// Handler serves the request history and artifact download endpoints.
type Handler struct {
	svc   *Service
	store object.Store
}

func NewHandler(svc *Service, store object.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/solicitudes", h.List)
	r.GET("/solicitudes/stats", h.Stats)
	r.GET("/solicitudes/export", h.ExportCSV)
	r.GET("/solicitudes/empresas", h.Empresas)
	r.GET("/solicitudes/:id", h.Get)
	r.GET("/file/:id", h.DownloadInput)
	r.GET("/download/:id", h.DownloadOutput)
}

func (h *Handler) List(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_filter", err.Error(), nil)
		return
	}
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", defaultPageSize)
	items, total, err := h.svc.List(c.Request.Context(), f, page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	respond.OK(c, ListResponse{
		Items:    ToDTOs(items),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *Handler) Stats(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_filter", err.Error(), nil)
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, stats)
}

func (h *Handler) Empresas(c *gin.Context) {
	empresas, err := h.svc.Empresas(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if empresas == nil {
		empresas = []string{}
	}
	respond.OK(c, EmpresasResponse{Empresas: empresas})
}

var exportHeader = []string{
	"id", "archivo_nombre", "archivo_tamano", "archivo_sha256",
	"salida_nombre", "salida_tamano", "salida_sha256",
	"banco", "empresa", "solicitado_en", "resultado", "estado",
	"error", "ip_cliente", "duracion_ms",
}

func (h *Handler) ExportCSV(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_filter", err.Error(), nil)
		return
	}
	items, err := h.svc.ListAll(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="solicitudes.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, s := range items {
		_ = w.Write([]string{
			strconv.FormatUint(s.ID, 10),
			s.ArchivoNombre,
			formatInt64Ptr(s.ArchivoTamano),
			s.ArchivoSHA256,
			s.SalidaNombre,
			formatInt64Ptr(s.SalidaTamano),
			s.SalidaSHA256,
			string(s.Banco),
			s.Empresa,
			s.SolicitadoEn.UTC().Format(time.RFC3339),
			string(s.Resultado),
			string(s.Estado),
			s.Error,
			s.IPCliente,
			formatInt64Ptr(s.DuracionMs),
		})
	}
	w.Flush()
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	s, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, ToDTO(s))
}

// DownloadInput streams the original uploaded statement, inline so browsers
// render the PDF instead of saving it.
func (h *Handler) DownloadInput(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	s, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if s.ArchivoSHA256 == "" {
		respond.Error(c, http.StatusNotFound, "file_not_found", "archivo original no disponible", nil)
		return
	}
	h.stream(c, InputKey(s.ArchivoSHA256), contentTypePDF, "inline", s.ArchivoNombre)
}

// DownloadOutput streams the produced artifact. Only successful requests have
// one, so anything else is a conflict rather than a missing record.
func (h *Handler) DownloadOutput(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	s, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if s.Estado != EstadoOK {
		respond.Error(c, http.StatusConflict, "not_ready",
			fmt.Sprintf("solicitud en estado %q, sin salida disponible", s.Estado), nil)
		return
	}
	name := s.SalidaNombre
	if name == "" {
		name = "salida." + s.Resultado.Ext()
	}
	h.stream(c, OutputKey(s.ArchivoSHA256, s.Resultado), artifactContentTypes[s.Resultado], "attachment", name)
}

func (h *Handler) stream(c *gin.Context, key, contentType, disposition, filename string) {
	rc, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "file_not_found", "objeto no disponible en el almacén", nil)
		return
	}
	defer rc.Close()
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "solicitud no encontrada", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, ErrTerminalState):
		respond.Error(c, http.StatusConflict, "terminal_state", "la solicitud ya fue finalizada", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "error interno", nil)
	}
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respond.Error(c, http.StatusBadRequest, "invalid_id", "id inválido", nil)
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// filterFromQuery validates the shared history filters. Dates use YYYY-MM-DD;
// fecha_hasta is inclusive, so the repo receives the following midnight.
func filterFromQuery(c *gin.Context) (Filter, error) {
	var f Filter
	if raw := strings.TrimSpace(c.Query("banco")); raw != "" {
		banco, err := ParseBanco(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Banco = banco
	}
	if raw := strings.TrimSpace(c.Query("resultado")); raw != "" {
		resultado, err := ParseResultado(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Resultado = resultado
	}
	if raw := strings.TrimSpace(c.Query("estado")); raw != "" {
		estado, err := ParseEstado(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Estado = estado
	}
	f.Empresa = strings.TrimSpace(c.Query("empresa"))
	f.Query = strings.TrimSpace(c.Query("q"))
	if raw := strings.TrimSpace(c.Query("fecha_desde")); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return Filter{}, fmt.Errorf("fecha_desde inválida: %q", raw)
		}
		f.Desde = &t
	}
	if raw := strings.TrimSpace(c.Query("fecha_hasta")); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return Filter{}, fmt.Errorf("fecha_hasta inválida: %q", raw)
		}
		next := t.AddDate(0, 0, 1)
		f.Hasta = &next
	}
	return f, nil
}

func formatInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

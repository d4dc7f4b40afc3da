package extractions

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"extractor-backend/internal/shared/server/respond"
	"extractor-backend/internal/shared/storage/object"
	"extractor-backend/internal/shared/util"
	"extractor-backend/internal/solicitudes"
)

const defaultMaxUploadMB = 25

// Handler serves the statement upload endpoint.
type Handler struct {
	svc         *Service
	store       object.Store
	maxUploadMB int64
}

func NewHandler(svc *Service, store object.Store, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	return &Handler{svc: svc, store: store, maxUploadMB: maxUploadMB}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/extract/:bank", h.Extract)
}

// Extract accepts a multipart statement upload, runs the pipeline and streams
// the produced artifact back. Form fields: file (required), empresa and
// resultado (optional, resultado defaults to xlsx).
func (h *Handler) Extract(c *gin.Context) {
	banco, err := solicitudes.ParseBanco(c.Param("bank"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_banco", err.Error(), nil)
		return
	}
	c.Set("banco", string(banco))

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadMB<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "missing_file", "se requiere el campo multipart 'file'", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "unreadable_file", "no se pudo leer el archivo", nil)
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Sprintf("el archivo excede el límite de %d MB", h.maxUploadMB), nil)
		return
	}

	archivoNombre, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_filename", "nombre de archivo inválido", nil)
		return
	}

	resultado := c.PostForm("resultado")
	if resultado == "" {
		resultado = string(solicitudes.ResultadoXLSX)
	}

	result, err := h.svc.Run(c.Request.Context(), Request{
		Banco:         string(banco),
		Empresa:       c.PostForm("empresa"),
		Resultado:     resultado,
		ArchivoNombre: archivoNombre,
		IPCliente:     c.ClientIP(),
		Data:          data,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set("solicitudId", result.Solicitud.ID)
	c.Set("estado", string(result.Solicitud.Estado))

	rc, err := h.store.Open(c.Request.Context(), result.ArtifactKey)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "artifact_unavailable", "la salida no está disponible", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", result.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.ArtifactName))
	c.Header("X-Solicitud-Id", strconv.FormatUint(result.Solicitud.ID, 10))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, solicitudes.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, ErrExtractionFailed):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "error interno", nil)
	}
}

package solicitudes

import "time"

// SolicitudDTO is the wire shape of a ledger record. Field names mirror the
// table columns so API consumers and CSV exports stay aligned.
type SolicitudDTO struct {
	ID            uint64 `json:"id"`
	ArchivoNombre string `json:"archivo_nombre"`
	ArchivoTamano *int64 `json:"archivo_tamano"`
	ArchivoSHA256 string `json:"archivo_sha256,omitempty"`
	SalidaNombre  string `json:"salida_nombre,omitempty"`
	SalidaTamano  *int64 `json:"salida_tamano,omitempty"`
	SalidaSHA256  string `json:"salida_sha256,omitempty"`
	Banco         string `json:"banco"`
	Empresa       string `json:"empresa"`
	SolicitadoEn  string `json:"solicitado_en"`
	Resultado     string `json:"resultado"`
	Estado        string `json:"estado"`
	Error         string `json:"error,omitempty"`
	IPCliente     string `json:"ip_cliente,omitempty"`
	DuracionMs    *int64 `json:"duracion_ms,omitempty"`
}

func ToDTO(s Solicitud) SolicitudDTO {
	return SolicitudDTO{
		ID:            s.ID,
		ArchivoNombre: s.ArchivoNombre,
		ArchivoTamano: s.ArchivoTamano,
		ArchivoSHA256: s.ArchivoSHA256,
		SalidaNombre:  s.SalidaNombre,
		SalidaTamano:  s.SalidaTamano,
		SalidaSHA256:  s.SalidaSHA256,
		Banco:         string(s.Banco),
		Empresa:       s.Empresa,
		SolicitadoEn:  s.SolicitadoEn.UTC().Format(time.RFC3339),
		Resultado:     string(s.Resultado),
		Estado:        string(s.Estado),
		Error:         s.Error,
		IPCliente:     s.IPCliente,
		DuracionMs:    s.DuracionMs,
	}
}

func ToDTOs(items []Solicitud) []SolicitudDTO {
	dtos := make([]SolicitudDTO, 0, len(items))
	for _, s := range items {
		dtos = append(dtos, ToDTO(s))
	}
	return dtos
}

// ListResponse is one page of history records.
type ListResponse struct {
	Items    []SolicitudDTO `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// EmpresasResponse lists the distinct companies seen in the ledger.
type EmpresasResponse struct {
	Empresas []string `json:"empresas"`
}

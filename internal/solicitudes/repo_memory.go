package solicitudes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MemoryRepo is an in-memory ledger used when no database is configured and
// in tests. It mirrors the MySQL repo's semantics, including the terminal
// transition guard and Spanish-collated empresa listing.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID uint64
	items  map[uint64]Solicitud
	now    func() time.Time
}

var _ Repo = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID: 1,
		items:  make(map[uint64]Solicitud),
		now:    time.Now,
	}
}

func (r *MemoryRepo) Create(ctx context.Context, s Solicitud) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	s.Estado = EstadoProcessing
	s.SolicitadoEn = r.now().UTC()
	s.SalidaNombre = ""
	s.SalidaTamano = nil
	s.SalidaSHA256 = ""
	s.Error = ""
	s.DuracionMs = nil
	r.items[s.ID] = s
	return s.ID, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id uint64) (Solicitud, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return Solicitud{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) Complete(ctx context.Context, id uint64, upd TerminalUpdate) error {
	if !upd.Estado.Terminal() {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	if s.Estado.Terminal() {
		return ErrTerminalState
	}
	s.Estado = upd.Estado
	s.SalidaNombre = upd.SalidaNombre
	s.SalidaTamano = upd.SalidaTamano
	s.SalidaSHA256 = upd.SalidaSHA256
	s.Error = upd.Error
	s.DuracionMs = upd.DuracionMs
	r.items[id] = s
	return nil
}

func (r *MemoryRepo) UpdateEmpresa(ctx context.Context, id uint64, empresa string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	if s.Estado.Terminal() {
		return ErrTerminalState
	}
	s.Empresa = empresa
	r.items[id] = s
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f Filter, limit, offset int) ([]Solicitud, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.filtered(f)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SolicitadoEn.Equal(matched[j].SolicitadoEn) {
			return matched[i].SolicitadoEn.After(matched[j].SolicitadoEn)
		}
		return matched[i].ID > matched[j].ID
	})
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *MemoryRepo) Stats(ctx context.Context, f Filter) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats Stats
	for _, s := range r.filtered(f) {
		switch s.Estado {
		case EstadoOK:
			stats.OK++
		case EstadoFail:
			stats.Fail++
		case EstadoProcessing:
			stats.Processing++
		}
		stats.Total++
	}
	return stats, nil
}

func (r *MemoryRepo) Empresas(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	var empresas []string
	for _, s := range r.items {
		if _, ok := seen[s.Empresa]; ok {
			continue
		}
		seen[s.Empresa] = struct{}{}
		empresas = append(empresas, s.Empresa)
	}
	collate.New(language.Spanish).SortStrings(empresas)
	return empresas, nil
}

func (r *MemoryRepo) FindLatestOKByInputHash(ctx context.Context, sha string, resultado Resultado) (Solicitud, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best Solicitud
	var found bool
	for _, s := range r.items {
		if s.Estado != EstadoOK || s.ArchivoSHA256 != sha || s.Resultado != resultado {
			continue
		}
		if !found || s.ID > best.ID {
			best = s
			found = true
		}
	}
	if !found {
		return Solicitud{}, ErrNotFound
	}
	return best, nil
}

func (r *MemoryRepo) filtered(f Filter) []Solicitud {
	var matched []Solicitud
	for _, s := range r.items {
		if f.Banco != "" && s.Banco != f.Banco {
			continue
		}
		if f.Empresa != "" && !strings.Contains(strings.ToLower(s.Empresa), strings.ToLower(f.Empresa)) {
			continue
		}
		if f.Resultado != "" && s.Resultado != f.Resultado {
			continue
		}
		if f.Estado != "" && s.Estado != f.Estado {
			continue
		}
		if f.Desde != nil && s.SolicitadoEn.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && !s.SolicitadoEn.Before(*f.Hasta) {
			continue
		}
		if f.Query != "" && !matchesQuery(s, f.Query) {
			continue
		}
		if f.ArchivoSHA256 != "" && s.ArchivoSHA256 != f.ArchivoSHA256 {
			continue
		}
		matched = append(matched, s)
	}
	return matched
}

func matchesQuery(s Solicitud, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(s.ArchivoNombre), q) ||
		strings.Contains(strings.ToLower(s.SalidaNombre), q) ||
		strings.Contains(strings.ToLower(s.Empresa), q)
}

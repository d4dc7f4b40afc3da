package solicitudes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// MySQLRepo persists the request ledger in the solicitudes table.
type MySQLRepo struct {
	db *sql.DB
}

var _ Repo = (*MySQLRepo)(nil)

func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{db: db}
}

const solicitudColumns = `id, archivo_nombre, archivo_tamano, archivo_sha256,
       salida_nombre, salida_tamano, salida_sha256,
       banco, empresa, solicitado_en, resultado, estado, error, ip_cliente, duracion_ms`

const createSolicitudQuery = `
INSERT INTO solicitudes
       (archivo_nombre, archivo_tamano, archivo_sha256, banco, empresa, resultado, estado, ip_cliente)
VALUES (?, ?, ?, ?, ?, ?, 'processing', ?)`

func (r *MySQLRepo) Create(ctx context.Context, s Solicitud) (uint64, error) {
	res, err := r.db.ExecContext(ctx, createSolicitudQuery,
		s.ArchivoNombre,
		nullInt64(s.ArchivoTamano),
		nullString(s.ArchivoSHA256),
		string(s.Banco),
		s.Empresa,
		string(s.Resultado),
		nullString(s.IPCliente),
	)
	if err != nil {
		return 0, fmt.Errorf("insert solicitud: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert solicitud id: %w", err)
	}
	return uint64(id), nil
}

const getSolicitudQuery = `
SELECT ` + solicitudColumns + `
  FROM solicitudes
 WHERE id = ?`

func (r *MySQLRepo) GetByID(ctx context.Context, id uint64) (Solicitud, error) {
	row := r.db.QueryRowContext(ctx, getSolicitudQuery, id)
	s, err := scanSolicitud(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Solicitud{}, ErrNotFound
	}
	if err != nil {
		return Solicitud{}, fmt.Errorf("get solicitud: %w", err)
	}
	return s, nil
}

// The estado predicate makes the terminal transition a compare-and-set:
// a second completion matches zero rows and never overwrites the first.
const completeSolicitudQuery = `
UPDATE solicitudes
   SET estado = ?,
       salida_nombre = ?,
       salida_tamano = ?,
       salida_sha256 = ?,
       error = ?,
       duracion_ms = ?
 WHERE id = ? AND estado = 'processing'`

func (r *MySQLRepo) Complete(ctx context.Context, id uint64, upd TerminalUpdate) error {
	if !upd.Estado.Terminal() {
		return fmt.Errorf("%w: estado %q is not terminal", ErrInvalidInput, upd.Estado)
	}
	res, err := r.db.ExecContext(ctx, completeSolicitudQuery,
		string(upd.Estado),
		nullString(upd.SalidaNombre),
		nullInt64(upd.SalidaTamano),
		nullString(upd.SalidaSHA256),
		nullString(upd.Error),
		nullInt64(upd.DuracionMs),
		id,
	)
	if err != nil {
		return fmt.Errorf("complete solicitud: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete solicitud rows: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrTerminalState
	}
	return nil
}

const updateEmpresaQuery = `
UPDATE solicitudes
   SET empresa = ?
 WHERE id = ? AND estado = 'processing'`

func (r *MySQLRepo) UpdateEmpresa(ctx context.Context, id uint64, empresa string) error {
	res, err := r.db.ExecContext(ctx, updateEmpresaQuery, empresa, id)
	if err != nil {
		return fmt.Errorf("update empresa: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update empresa rows: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrTerminalState
	}
	return nil
}

func (r *MySQLRepo) List(ctx context.Context, f Filter, limit, offset int) ([]Solicitud, int, error) {
	where, args := buildWhere(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM solicitudes" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count solicitudes: %w", err)
	}

	listQuery := "SELECT " + solicitudColumns + " FROM solicitudes" + where +
		" ORDER BY solicitado_en DESC, id DESC LIMIT ? OFFSET ?"
	listArgs := append(append([]any{}, args...), limit, offset)
	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list solicitudes: %w", err)
	}
	defer rows.Close()

	var items []Solicitud
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan solicitud: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate solicitudes: %w", err)
	}
	return items, total, nil
}

func (r *MySQLRepo) Stats(ctx context.Context, f Filter) (Stats, error) {
	where, args := buildWhere(f)
	query := "SELECT estado, COUNT(*) FROM solicitudes" + where + " GROUP BY estado"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("stats solicitudes: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var estado string
		var count int
		if err := rows.Scan(&estado, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		switch Estado(estado) {
		case EstadoOK:
			stats.OK = count
		case EstadoFail:
			stats.Fail = count
		case EstadoProcessing:
			stats.Processing = count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

// Empresas relies on the table collation for Spanish alphabetical order.
const empresasQuery = `
SELECT DISTINCT empresa
  FROM solicitudes
 ORDER BY empresa`

func (r *MySQLRepo) Empresas(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, empresasQuery)
	if err != nil {
		return nil, fmt.Errorf("list empresas: %w", err)
	}
	defer rows.Close()

	var empresas []string
	for rows.Next() {
		var empresa string
		if err := rows.Scan(&empresa); err != nil {
			return nil, fmt.Errorf("scan empresa: %w", err)
		}
		empresas = append(empresas, empresa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate empresas: %w", err)
	}
	return empresas, nil
}

const latestOKByHashQuery = `
SELECT ` + solicitudColumns + `
  FROM solicitudes
 WHERE archivo_sha256 = ? AND resultado = ? AND estado = 'ok'
 ORDER BY id DESC
 LIMIT 1`

func (r *MySQLRepo) FindLatestOKByInputHash(ctx context.Context, sha string, resultado Resultado) (Solicitud, error) {
	row := r.db.QueryRowContext(ctx, latestOKByHashQuery, sha, string(resultado))
	s, err := scanSolicitud(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Solicitud{}, ErrNotFound
	}
	if err != nil {
		return Solicitud{}, fmt.Errorf("find solicitud by hash: %w", err)
	}
	return s, nil
}

func buildWhere(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Banco != "" {
		conds = append(conds, "banco = ?")
		args = append(args, string(f.Banco))
	}
	if f.Empresa != "" {
		conds = append(conds, "empresa LIKE CONCAT('%', ?, '%')")
		args = append(args, f.Empresa)
	}
	if f.Resultado != "" {
		conds = append(conds, "resultado = ?")
		args = append(args, string(f.Resultado))
	}
	if f.Estado != "" {
		conds = append(conds, "estado = ?")
		args = append(args, string(f.Estado))
	}
	if f.Desde != nil {
		conds = append(conds, "solicitado_en >= ?")
		args = append(args, *f.Desde)
	}
	if f.Hasta != nil {
		conds = append(conds, "solicitado_en < ?")
		args = append(args, *f.Hasta)
	}
	if f.Query != "" {
		conds = append(conds, "(archivo_nombre LIKE CONCAT('%', ?, '%') OR salida_nombre LIKE CONCAT('%', ?, '%') OR empresa LIKE CONCAT('%', ?, '%'))")
		args = append(args, f.Query, f.Query, f.Query)
	}
	if f.ArchivoSHA256 != "" {
		conds = append(conds, "archivo_sha256 = ?")
		args = append(args, f.ArchivoSHA256)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSolicitud(row rowScanner) (Solicitud, error) {
	var s Solicitud
	var archivoTamano, salidaTamano, duracionMs sql.NullInt64
	var archivoSHA, salidaNombre, salidaSHA, errMsg, ipCliente sql.NullString
	err := row.Scan(
		&s.ID,
		&s.ArchivoNombre,
		&archivoTamano,
		&archivoSHA,
		&salidaNombre,
		&salidaTamano,
		&salidaSHA,
		&s.Banco,
		&s.Empresa,
		&s.SolicitadoEn,
		&s.Resultado,
		&s.Estado,
		&errMsg,
		&ipCliente,
		&duracionMs,
	)
	if err != nil {
		return Solicitud{}, err
	}
	if archivoTamano.Valid {
		v := archivoTamano.Int64
		s.ArchivoTamano = &v
	}
	if salidaTamano.Valid {
		v := salidaTamano.Int64
		s.SalidaTamano = &v
	}
	if duracionMs.Valid {
		v := duracionMs.Int64
		s.DuracionMs = &v
	}
	s.ArchivoSHA256 = archivoSHA.String
	s.SalidaNombre = salidaNombre.String
	s.SalidaSHA256 = salidaSHA.String
	s.Error = errMsg.String
	s.IPCliente = ipCliente.String
	return s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

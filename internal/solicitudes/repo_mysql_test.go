package solicitudes

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*MySQLRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLRepo(db), mock
}

func solicitudRows(items ...Solicitud) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "archivo_nombre", "archivo_tamano", "archivo_sha256",
		"salida_nombre", "salida_tamano", "salida_sha256",
		"banco", "empresa", "solicitado_en", "resultado", "estado",
		"error", "ip_cliente", "duracion_ms",
	})
	for _, s := range items {
		rows.AddRow(
			s.ID, s.ArchivoNombre, int64Value(s.ArchivoTamano), stringValue(s.ArchivoSHA256),
			stringValue(s.SalidaNombre), int64Value(s.SalidaTamano), stringValue(s.SalidaSHA256),
			string(s.Banco), s.Empresa, s.SolicitadoEn, string(s.Resultado), string(s.Estado),
			stringValue(s.Error), stringValue(s.IPCliente), int64Value(s.DuracionMs),
		)
	}
	return rows
}

func stringValue(s string) driver.Value {
	if s == "" {
		return nil
	}
	return s
}

func int64Value(v *int64) driver.Value {
	if v == nil {
		return nil
	}
	return *v
}

func TestMySQLRepoCreateReturnsInsertID(t *testing.T) {
	repo, mock := newMockRepo(t)

	size := int64(20480)
	mock.ExpectExec("INSERT INTO solicitudes").
		WithArgs(
			"edo_cuenta_enero.pdf",
			size,
			sqlmock.AnyArg(),
			"banorte",
			"ACME SA DE CV",
			"xlsx",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(13, 1))

	id, err := repo.Create(context.Background(), Solicitud{
		ArchivoNombre: "edo_cuenta_enero.pdf",
		ArchivoTamano: &size,
		ArchivoSHA256: "aa11bb22cc33dd44ee55ff66aa77bb88cc99dd00ee11ff22aa33bb44cc55dd66",
		Banco:         BancoBanorte,
		Empresa:       "ACME SA DE CV",
		Resultado:     ResultadoXLSX,
		IPCliente:     "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 13 {
		t.Fatalf("expected id 13, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMySQLRepoCompleteGuardsTerminalState(t *testing.T) {
	repo, mock := newMockRepo(t)

	duracion := int64(8421)
	mock.ExpectExec("UPDATE solicitudes").
		WithArgs("ok", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM solicitudes").
		WithArgs(uint64(7)).
		WillReturnRows(solicitudRows(Solicitud{
			ID:            7,
			ArchivoNombre: "a.pdf",
			Banco:         BancoBBVA,
			Empresa:       EmpresaPlaceholder,
			SolicitadoEn:  time.Now().UTC(),
			Resultado:     ResultadoXLSX,
			Estado:        EstadoFail,
		}))

	err := repo.Complete(context.Background(), 7, TerminalUpdate{
		Estado:       EstadoOK,
		SalidaNombre: "a.xlsx",
		SalidaSHA256: "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		DuracionMs:   &duracion,
	})
	if !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMySQLRepoCompleteMissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE solicitudes").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM solicitudes").
		WithArgs(uint64(99)).
		WillReturnRows(solicitudRows())

	err := repo.Complete(context.Background(), 99, TerminalUpdate{Estado: EstadoFail, Error: "boom"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMySQLRepoCompleteRejectsNonTerminalEstado(t *testing.T) {
	repo, _ := newMockRepo(t)

	err := repo.Complete(context.Background(), 1, TerminalUpdate{Estado: EstadoProcessing})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMySQLRepoGetByIDMapsNulls(t *testing.T) {
	repo, mock := newMockRepo(t)

	when := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM solicitudes").
		WithArgs(uint64(3)).
		WillReturnRows(solicitudRows(Solicitud{
			ID:            3,
			ArchivoNombre: "estado.pdf",
			Banco:         BancoSantander,
			Empresa:       EmpresaPlaceholder,
			SolicitadoEn:  when,
			Resultado:     ResultadoZIP,
			Estado:        EstadoProcessing,
		}))

	s, err := repo.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s.ArchivoTamano != nil || s.SalidaTamano != nil || s.DuracionMs != nil {
		t.Fatalf("expected nil optional fields, got %+v", s)
	}
	if s.SalidaNombre != "" || s.Error != "" {
		t.Fatalf("expected empty nullable strings, got %+v", s)
	}
	if s.Estado != EstadoProcessing {
		t.Fatalf("expected processing, got %s", s.Estado)
	}
}

func TestMySQLRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM solicitudes").
		WithArgs(uint64(42)).
		WillReturnRows(solicitudRows())

	if _, err := repo.GetByID(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMySQLRepoListCountsAndPages(t *testing.T) {
	repo, mock := newMockRepo(t)

	when := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM solicitudes").
		WithArgs("banorte").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT (.+) FROM solicitudes").
		WithArgs("banorte", 2, 2).
		WillReturnRows(solicitudRows(
			Solicitud{ID: 3, ArchivoNombre: "c.pdf", Banco: BancoBanorte, Empresa: "X", SolicitadoEn: when, Resultado: ResultadoXLSX, Estado: EstadoOK},
			Solicitud{ID: 2, ArchivoNombre: "b.pdf", Banco: BancoBanorte, Empresa: "X", SolicitadoEn: when, Resultado: ResultadoXLSX, Estado: EstadoFail},
		))

	items, total, err := repo.List(context.Background(), Filter{Banco: BancoBanorte}, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(items) != 2 || items[0].ID != 3 || items[1].ID != 2 {
		t.Fatalf("unexpected page: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMySQLRepoListFiltersEmpresaBySubstring(t *testing.T) {
	repo, mock := newMockRepo(t)

	when := time.Date(2026, 2, 3, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM solicitudes WHERE empresa LIKE CONCAT\\('%', \\?, '%'\\)").
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM solicitudes WHERE empresa LIKE CONCAT\\('%', \\?, '%'\\)").
		WithArgs("acme", 10, 0).
		WillReturnRows(solicitudRows(
			Solicitud{ID: 7, ArchivoNombre: "a.pdf", Banco: BancoSantander, Empresa: "ACME COMERCIAL SA DE CV", SolicitadoEn: when, Resultado: ResultadoXLSX, Estado: EstadoOK},
		))

	items, total, err := repo.List(context.Background(), Filter{Empresa: "acme"}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Empresa != "ACME COMERCIAL SA DE CV" {
		t.Fatalf("unexpected result: total=%d items=%+v", total, items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMySQLRepoStatsAggregatesPerEstado(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT estado, COUNT\\(\\*\\) FROM solicitudes").
		WillReturnRows(sqlmock.NewRows([]string{"estado", "count"}).
			AddRow("ok", 12).
			AddRow("fail", 3).
			AddRow("processing", 1))

	stats, err := repo.Stats(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := Stats{Total: 16, OK: 12, Fail: 3, Processing: 1}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}

func TestMySQLRepoFindLatestOKByInputHash(t *testing.T) {
	repo, mock := newMockRepo(t)

	sha := "aa11bb22cc33dd44ee55ff66aa77bb88cc99dd00ee11ff22aa33bb44cc55dd66"
	mock.ExpectQuery("SELECT (.+) FROM solicitudes").
		WithArgs(sha, "xlsx").
		WillReturnRows(solicitudRows(Solicitud{
			ID:            21,
			ArchivoNombre: "dup.pdf",
			ArchivoSHA256: sha,
			Banco:         BancoInbursa,
			Empresa:       "ACME",
			SolicitadoEn:  time.Now().UTC(),
			Resultado:     ResultadoXLSX,
			Estado:        EstadoOK,
		}))

	s, err := repo.FindLatestOKByInputHash(context.Background(), sha, ResultadoXLSX)
	if err != nil {
		t.Fatalf("FindLatestOKByInputHash: %v", err)
	}
	if s.ID != 21 {
		t.Fatalf("expected id 21, got %d", s.ID)
	}
}

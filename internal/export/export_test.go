package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"extractor-backend/internal/extract"
)

func sampleStatement() *extract.Statement {
	inicio := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fin := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	saldo := 112500.00
	return &extract.Statement{
		Banco:         "santander",
		Empresa:       "ACME COMERCIAL SA DE CV",
		RFC:           "ACM010203AB1",
		Clabe:         "014180655012345678",
		NumeroCuenta:  "65-50123456-7",
		PeriodoInicio: &inicio,
		PeriodoFin:    &fin,
		Movimientos: []extract.Movimiento{
			{
				Fecha:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				Folio:        "1234567",
				Descripcion:  "SPEI RECIBIDO BANCO CLIENTE",
				Deposito:     12500.00,
				Saldo:        &saldo,
				ClaveRastreo: "MBAN01002601010001",
			},
			{
				Fecha:       time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
				Descripcion: "PAGO PROVEEDOR",
				Retiro:      8000.00,
			},
		},
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleStatement(), "edo_cuenta.pdf"); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"info", "cuenta", "movimientos"} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing sheet %q in %v", want, sheets)
		}
	}

	banco, err := f.GetCellValue("info", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if banco != "SANTANDER" {
		t.Fatalf("info banco: %q", banco)
	}
	empresa, _ := f.GetCellValue("info", "E2")
	if empresa != "ACME COMERCIAL SA DE CV" {
		t.Fatalf("info empresa: %q", empresa)
	}

	fecha, _ := f.GetCellValue("movimientos", "A2")
	if fecha != "01-01-2026" {
		t.Fatalf("movimiento fecha: %q", fecha)
	}
	clave, _ := f.GetCellValue("movimientos", "G2")
	if clave != "MBAN01002601010001" {
		t.Fatalf("movimiento clave: %q", clave)
	}
	saldoB3, _ := f.GetCellValue("movimientos", "F3")
	if saldoB3 != "" {
		t.Fatalf("nil saldo must stay empty, got %q", saldoB3)
	}
}

func TestWriteZIPBundlesWorkbookAndClaves(t *testing.T) {
	st := sampleStatement()

	var xlsxBuf bytes.Buffer
	if err := WriteXLSX(&xlsxBuf, st, "edo_cuenta.pdf"); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	var zipBuf bytes.Buffer
	if err := WriteZIP(&zipBuf, st, "edo_cuenta.xlsx", xlsxBuf.Bytes()); err != nil {
		t.Fatalf("WriteZIP: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(zipBuf.Bytes()), int64(zipBuf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	var names []string
	var manifest string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "claves_rastreo.txt" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open manifest: %v", err)
			}
			raw, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("read manifest: %v", err)
			}
			manifest = string(raw)
		}
	}
	if len(names) != 2 || names[0] != "edo_cuenta.xlsx" {
		t.Fatalf("unexpected entries: %v", names)
	}
	if !strings.Contains(manifest, "MBAN01002601010001") {
		t.Fatalf("manifest missing clave: %q", manifest)
	}
}

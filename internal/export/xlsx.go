package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"extractor-backend/internal/extract"
)

const fechaLayout = "02-01-2006"

var (
	infoHeader   = []interface{}{"Banco", "Archivo", "Periodo inicio", "Periodo fin", "Empresa", "RFC"}
	cuentaHeader = []interface{}{"No. de cuenta", "CLABE", "Moneda"}
	movHeader    = []interface{}{"Fecha", "Folio", "Descripción", "Depósitos", "Retiro", "Saldo", "Clave de rastreo"}
)

// WriteXLSX renders a parsed statement as a workbook with info, cuenta and
// movimientos sheets.
func WriteXLSX(w io.Writer, st *extract.Statement, archivoNombre string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeInfoSheet(f, st, archivoNombre); err != nil {
		return err
	}
	if err := writeCuentaSheet(f, st); err != nil {
		return err
	}
	if err := writeMovimientosSheet(f, st); err != nil {
		return err
	}

	// excelize creates "Sheet1" by default; everything lives on named sheets.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeInfoSheet(f *excelize.File, st *extract.Statement, archivoNombre string) error {
	if _, err := f.NewSheet("info"); err != nil {
		return fmt.Errorf("info sheet: %w", err)
	}
	if err := f.SetSheetRow("info", "A1", &infoHeader); err != nil {
		return fmt.Errorf("info header: %w", err)
	}
	row := []interface{}{
		upperBanco(st.Banco),
		archivoNombre,
		formatFecha(st.PeriodoInicio),
		formatFecha(st.PeriodoFin),
		st.Empresa,
		st.RFC,
	}
	if err := f.SetSheetRow("info", "A2", &row); err != nil {
		return fmt.Errorf("info row: %w", err)
	}
	return nil
}

func writeCuentaSheet(f *excelize.File, st *extract.Statement) error {
	if _, err := f.NewSheet("cuenta"); err != nil {
		return fmt.Errorf("cuenta sheet: %w", err)
	}
	if err := f.SetSheetRow("cuenta", "A1", &cuentaHeader); err != nil {
		return fmt.Errorf("cuenta header: %w", err)
	}
	row := []interface{}{st.NumeroCuenta, st.Clabe, "MXN"}
	if err := f.SetSheetRow("cuenta", "A2", &row); err != nil {
		return fmt.Errorf("cuenta row: %w", err)
	}
	return nil
}

func writeMovimientosSheet(f *excelize.File, st *extract.Statement) error {
	if _, err := f.NewSheet("movimientos"); err != nil {
		return fmt.Errorf("movimientos sheet: %w", err)
	}
	if err := f.SetSheetRow("movimientos", "A1", &movHeader); err != nil {
		return fmt.Errorf("movimientos header: %w", err)
	}
	for i, m := range st.Movimientos {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("movimientos cell: %w", err)
		}
		row := []interface{}{
			m.Fecha.Format(fechaLayout),
			m.Folio,
			m.Descripcion,
			m.Deposito,
			m.Retiro,
			saldoCell(m.Saldo),
			m.ClaveRastreo,
		}
		if err := f.SetSheetRow("movimientos", cell, &row); err != nil {
			return fmt.Errorf("movimientos row %d: %w", i+2, err)
		}
	}
	return nil
}

func saldoCell(saldo *float64) interface{} {
	if saldo == nil {
		return nil
	}
	return *saldo
}

func formatFecha(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(fechaLayout)
}

func upperBanco(banco string) string {
	return strings.ToUpper(banco)
}

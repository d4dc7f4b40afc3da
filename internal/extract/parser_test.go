package extract

import (
	"testing"
	"time"
)

const santanderText = `ACME COMERCIAL SA DE CV
AV INSURGENTES SUR 100 PISO 4
R.F.C. ACM010203AB1
CUENTA CLABE: 014180655012345678
PERIODO DEL 01-ENE-2026 AL 31-ENE-2026
Detalle de movimientos cuenta de cheques
FECHA FOLIO DESCRIPCION DEPOSITO RETIRO SALDO
01-ENE-2026 1234567 SPEI RECIBIDO BANCO CLIENTE 12,500.00 112,500.00
CLAVE DE RASTREO MBAN01002601010001
03-ENE-2026 1234568 PAGO PROVEEDOR TRANSFERENCIA SPEI 8,000.00 104,500.00
05-ENE-2026 1234569 COMISION MEMBRESIA 150.00 104,350.00
TOTAL 12,500.00 8,150.00
SALDO FINAL DEL PERIODO 104,350.00`

func TestSantanderParserMovements(t *testing.T) {
	p, err := ForBanco("santander")
	if err != nil {
		t.Fatalf("ForBanco: %v", err)
	}
	st, err := p.Parse(santanderText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if st.Empresa != "ACME COMERCIAL SA DE CV" {
		t.Fatalf("empresa: %q", st.Empresa)
	}
	if st.RFC != "ACM010203AB1" {
		t.Fatalf("rfc: %q", st.RFC)
	}
	if st.Clabe != "014180655012345678" {
		t.Fatalf("clabe: %q", st.Clabe)
	}
	if st.PeriodoInicio == nil || st.PeriodoFin == nil {
		t.Fatal("periodo not parsed")
	}
	if got := st.PeriodoFin.Format("2006-01-02"); got != "2026-01-31" {
		t.Fatalf("periodo fin: %s", got)
	}

	if len(st.Movimientos) != 3 {
		t.Fatalf("expected 3 movements, got %d: %+v", len(st.Movimientos), st.Movimientos)
	}

	first := st.Movimientos[0]
	if !first.Fecha.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first fecha: %s", first.Fecha)
	}
	if first.Folio != "1234567" {
		t.Fatalf("first folio: %q", first.Folio)
	}
	if first.Deposito != 12500.00 || first.Retiro != 0 {
		t.Fatalf("first amounts: dep=%v ret=%v", first.Deposito, first.Retiro)
	}
	if first.Saldo == nil || *first.Saldo != 112500.00 {
		t.Fatalf("first saldo: %v", first.Saldo)
	}
	if first.ClaveRastreo != "MBAN01002601010001" {
		t.Fatalf("first clave: %q", first.ClaveRastreo)
	}

	second := st.Movimientos[1]
	if second.Retiro != 8000.00 || second.Deposito != 0 {
		t.Fatalf("second amounts: dep=%v ret=%v", second.Deposito, second.Retiro)
	}

	third := st.Movimientos[2]
	if third.Retiro != 150.00 || third.Deposito != 0 {
		t.Fatalf("comision must be retiro: dep=%v ret=%v", third.Deposito, third.Retiro)
	}
}

func TestSantanderParserDropsFiscalNoise(t *testing.T) {
	text := santanderText + "\n02-ENE-2026 7654321 UUID CFDI TIMBRADO ABC 1.00 104,351.00"
	p, _ := ForBanco("santander")
	st, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, m := range st.Movimientos {
		if m.Descripcion != "" && isGarbage(m.Descripcion) {
			t.Fatalf("fiscal noise kept as description: %q", m.Descripcion)
		}
	}
}

const banorteText = `COMERCIALIZADORA DEL NORTE SA DE CV
R.F.C. CDN990101XX2
No. Cuenta: 06501234567
PERIODO DEL 01-FEB-26 AL 28-FEB-26
FECHA DESCRIPCION DEPOSITOS RETIROS SALDO
02-FEB-26 DEPOSITO EFECTIVO SUCURSAL 5,000.00 25,000.00
10-FEB-26 SPEI ENVIADO BBVA 0012345 3,250.50 21,749.50
TOTAL`

func TestBanorteParserTwoDigitYear(t *testing.T) {
	p, err := ForBanco("banorte")
	if err != nil {
		t.Fatalf("ForBanco: %v", err)
	}
	st, err := p.Parse(banorteText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(st.Movimientos) != 2 {
		t.Fatalf("expected 2 movements, got %d: %+v", len(st.Movimientos), st.Movimientos)
	}
	if got := st.Movimientos[0].Fecha; !got.Equal(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("fecha: %s", got)
	}
	if st.Movimientos[1].Retiro != 3250.50 {
		t.Fatalf("spei enviado must be retiro: %+v", st.Movimientos[1])
	}
}

const bbvaText = `GRUPO INDUSTRIAL DEL SUR SA DE CV
R.F.C. GIS850505QQ3
CLABE: 012180001234567890
PERIODO DEL 01-MAR-2026 AL 31-MAR-2026
FECHA DESCRIPCION CARGOS ABONOS SALDO
05/MAR SPEI RECIBIDO SANTANDER FACT 881 10,000.00 60,000.00
18/MAR PAGO SERVICIO LUZ 1,200.00 58,800.00`

func TestBBVAParserYearFromPeriodo(t *testing.T) {
	p, err := ForBanco("bbva")
	if err != nil {
		t.Fatalf("ForBanco: %v", err)
	}
	st, err := p.Parse(bbvaText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(st.Movimientos) != 2 {
		t.Fatalf("expected 2 movements, got %d: %+v", len(st.Movimientos), st.Movimientos)
	}
	if got := st.Movimientos[0].Fecha; got.Year() != 2026 || got.Month() != time.March || got.Day() != 5 {
		t.Fatalf("fecha must take year from periodo: %s", got)
	}
	if st.Movimientos[0].Deposito != 10000.00 {
		t.Fatalf("spei recibido must be deposito: %+v", st.Movimientos[0])
	}
	if st.Movimientos[1].Retiro != 1200.00 {
		t.Fatalf("pago must be retiro: %+v", st.Movimientos[1])
	}
}

const inbursaText = `SERVICIOS CORPORATIVOS DEL BAJIO SA DE CV
R.F.C. SCB000111ZZ4
PERIODO DEL 01-ABR-2026 AL 30-ABR-2026
ABR 03 SPEI RECIBIDO INTERESES GANADOS 500.00 30,500.00
ABR 21 RETIRO CAJERO 2,000.00 28,500.00`

func TestInbursaParserMonthDayRows(t *testing.T) {
	p, err := ForBanco("inbursa")
	if err != nil {
		t.Fatalf("ForBanco: %v", err)
	}
	st, err := p.Parse(inbursaText)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(st.Movimientos) != 2 {
		t.Fatalf("expected 2 movements, got %d: %+v", len(st.Movimientos), st.Movimientos)
	}
	if got := st.Movimientos[0].Fecha; !got.Equal(time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("fecha: %s", got)
	}
	if st.Movimientos[1].Retiro != 2000.00 {
		t.Fatalf("retiro cajero: %+v", st.Movimientos[1])
	}
}

func TestForBancoUnknown(t *testing.T) {
	if _, err := ForBanco("paypal"); err == nil {
		t.Fatal("expected error for unknown banco")
	}
}

func TestTextRejectsNonPDF(t *testing.T) {
	if _, err := Text([]byte("hello")); err != ErrNotPDF {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestClavesRastreoDeduplicates(t *testing.T) {
	st := &Statement{Movimientos: []Movimiento{
		{ClaveRastreo: "MBAN0100A"},
		{ClaveRastreo: ""},
		{ClaveRastreo: "MBAN0100A"},
		{ClaveRastreo: "NU99887766554433"},
	}}
	claves := st.ClavesRastreo()
	if len(claves) != 2 || claves[0] != "MBAN0100A" || claves[1] != "NU99887766554433" {
		t.Fatalf("unexpected claves: %v", claves)
	}
}

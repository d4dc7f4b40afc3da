package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// mesAbrev maps Spanish three-letter month abbreviations, including the
// alternate "set" for septiembre.
var mesAbrev = map[string]time.Month{
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "sep": time.September,
	"set": time.September, "oct": time.October, "nov": time.November,
	"dic": time.December,
}

var (
	// Amounts like 3,536,667.93, optionally with a currency sign.
	amountRe = regexp.MustCompile(`\$?\s*\d{1,3}(?:,\d{3})*\.\d{2}`)

	totalRe      = regexp.MustCompile(`(?i)\bTOTAL\b`)
	saldoFinalRe = regexp.MustCompile(`(?i)SALDO\s+FINAL\s+DEL\s+PERIODO`)

	rfcRe    = regexp.MustCompile(`(?i)\bR\.?\s*F\.?\s*C\.?\s*[:\- ]+([A-ZÑ&]{3,4}\d{6}[A-Z0-9]{2,3})\b`)
	clabeRe  = regexp.MustCompile(`(?i)\bCLABE[: ]+(\d{18})\b`)
	cuentaRe = regexp.MustCompile(`(?i)\bNo\.?\s*(?:DE\s+)?CUENTA[: ]+([0-9\-]{6,})\b`)

	claveRastreoLabelRe = regexp.MustCompile(`(?i)\bCLAVE\s+DE\s+RASTREO\b[: ]*([0-9A-Z]{8,30})?`)
	trackCodeRe         = regexp.MustCompile(`\b(MBAN[0-9A-Z]+|NU[0-9A-Z]+|\d{15,20})\b`)

	// Fiscal stamping noise (CFDI blocks) that bleeds into statement text.
	infoFiscalRe = regexp.MustCompile(`(?i)\b(UUID|CFDI|TIMBRAD[OA]|COMPROBANTE|SELLO\s+DIGITAL|CADENA\s+ORIGINAL|SAT|REG[IÍ]MEN|EMISOR|RECEPTOR|USO\s+CFDI|FOLIO\s+INTERNO|FORMA\s+DE\s+PAGO|M[EÉ]TODO\s+DE\s+PAGO|FECHA\s+Y\s+HORA\s+DE|CERTIFICACI[ÓO]N|CSD|COMPLEMENTO)\b`)
	base64ishRe  = regexp.MustCompile(`[A-Za-z0-9+/=]{20,}`)
	paginaRe     = regexp.MustCompile(`(?i)\bP[\W_]*GINA\s*\d+\s*DE\s*\d+\b`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// Deposit and withdrawal keywords, used to place a lone amount on the right
// column when the layout gives no hint.
var (
	abonoKeys = []string{
		"ABONO", "ABO ", "DEPOSITO", "RECIBIDO", "SPEI RECIBIDO",
		"INTERES", "INTERESES", "DEVOLUCION", "REEMBOLSO", "TRASPASO RECIBIDO",
	}
	retiroKeys = []string{
		"RETIRO", "PAGO", "ENVIADO", "TRANSFERENCIA SPEI", "SPEI HORA", "SPEI ENVIADO",
		"COMISION", "IVA", "COMPRA", "COBRO",
		"RETENCION", "ISR", "MEMBRESIA", "MEMBRES", "CARGO", "CUOTA", "ANUALIDAD",
		"SEGURO", "SERVICIO", "MANTENIMIENTO",
		"APORT", "LINEA CAPTURA", "CAPTURA INTERNET",
	}
)

var accentReplacer = strings.NewReplacer(
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N",
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func normUpper(s string) string {
	return compactSpaces(accentReplacer.Replace(strings.ToUpper(s)))
}

func compactSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

var nonAlnumRe = regexp.MustCompile(`[^A-Z0-9]`)

// hasTokens checks keywords tolerating spacing and punctuation differences.
func hasTokens(desc string, tokens []string) bool {
	u0 := normUpper(desc)
	u1 := nonAlnumRe.ReplaceAllString(u0, "")
	for _, t := range tokens {
		t0 := normUpper(t)
		t1 := nonAlnumRe.ReplaceAllString(t0, "")
		if strings.Contains(u0, t0) || (t1 != "" && strings.Contains(u1, t1)) {
			return true
		}
	}
	return false
}

// classifyAmount places a lone amount as (retiro, deposito) using keywords.
// Unmatched descriptions default to deposit.
func classifyAmount(desc string, monto float64) (retiro, deposito float64) {
	if monto == 0 {
		return 0, 0
	}
	if hasTokens(desc, abonoKeys) {
		return 0, monto
	}
	if hasTokens(desc, retiroKeys) {
		return monto, 0
	}
	return 0, monto
}

// reconcileAmounts enforces that a movement is either a deposit or a
// withdrawal, using keywords to break ties.
func reconcileAmounts(desc string, dep, ret float64) (float64, float64) {
	hasAbono := hasTokens(desc, abonoKeys)
	hasRetiro := hasTokens(desc, retiroKeys)

	switch {
	case dep > 0 && ret > 0:
		if hasAbono && !hasRetiro {
			ret = 0
		} else {
			dep = 0
		}
	case dep > 0 && ret == 0 && hasRetiro && !hasAbono:
		ret, dep = dep, 0
	case ret > 0 && dep == 0 && hasAbono && !hasRetiro:
		dep, ret = ret, 0
	}
	return round2(dep), round2(ret)
}

func round2(v float64) float64 {
	if v >= 0 {
		return float64(int64(v*100+0.5)) / 100
	}
	return float64(int64(v*100-0.5)) / 100
}

func parseAmount(s string) float64 {
	t := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0
	}
	return v
}

// tailAmounts splits a row into its description and the rightmost contiguous
// run of up to max amounts (deposit, withdrawal, balance).
func tailAmounts(line string, max int) (string, []float64) {
	s := stripPageGarbage(line)
	locs := amountRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s, nil
	}
	tail := [][]int{locs[len(locs)-1]}
	curStart := locs[len(locs)-1][0]
	for j := len(locs) - 2; j >= 0 && len(tail) < max; j-- {
		between := s[locs[j][1]:curStart]
		if strings.TrimSpace(between) != "" {
			break
		}
		tail = append([][]int{locs[j]}, tail...)
		curStart = locs[j][0]
	}
	desc := strings.TrimRight(s[:curStart], " ")
	vals := make([]float64, 0, len(tail))
	for _, loc := range tail {
		vals = append(vals, parseAmount(s[loc[0]:loc[1]]))
	}
	return desc, vals
}

// cutAfterTotals drops everything from the first TOTAL or SALDO FINAL token,
// so footer totals never merge into the last movement.
func cutAfterTotals(s string) string {
	cut := len(s)
	if loc := totalRe.FindStringIndex(s); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	if loc := saldoFinalRe.FindStringIndex(s); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	return strings.TrimRight(s[:cut], " ")
}

func hasTotalOrFinal(s string) bool {
	return totalRe.MatchString(s) || saldoFinalRe.MatchString(s)
}

// isGarbage reports fiscal-stamping or base64-looking noise, except rows that
// carry a tracking code label.
func isGarbage(s string) bool {
	if s == "" {
		return true
	}
	if claveRastreoLabelRe.MatchString(s) {
		return false
	}
	return infoFiscalRe.MatchString(s) || base64ishRe.MatchString(s)
}

func stripPageGarbage(s string) string {
	return compactSpaces(paginaRe.ReplaceAllString(s, ""))
}

// claveRastreo finds a SPEI tracking code on the row, preferring an explicit
// label over a bare code match.
func claveRastreo(s string) string {
	if m := claveRastreoLabelRe.FindStringSubmatch(s); m != nil && m[1] != "" {
		return m[1]
	}
	if claveRastreoLabelRe.MatchString(s) {
		if m := trackCodeRe.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// parseFecha parses dd-MMM-yyyy or dd-MMM-yy with Spanish months, tolerating
// slashes and spaces as separators.
var fechaRe = regexp.MustCompile(`(\d{1,2})\s*[-/ ]\s*([A-Za-zÁá]{3})\.?\s*(?:[-/ ]\s*(\d{2,4}))?`)

func parseFecha(token string, defaultYear int) (time.Time, bool) {
	m := fechaRe.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	mon, ok := mesAbrev[strings.ToLower(accentReplacer.Replace(m[2]))]
	if !ok || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := defaultYear
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}
	if year == 0 {
		return time.Time{}, false
	}
	return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC), true
}

var periodoRe = regexp.MustCompile(`(?i)PERIODO\s+DEL\s+(\d{1,2}\s*[-/ ]\s*[A-Za-zÁá]{3}\s*[-/ ]\s*\d{2,4})\s+AL\s+(\d{1,2}\s*[-/ ]\s*[A-Za-zÁá]{3}\s*[-/ ]\s*\d{2,4})`)

func parsePeriodo(text string) (*time.Time, *time.Time) {
	m := periodoRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	var inicio, fin *time.Time
	if t, ok := parseFecha(m[1], 0); ok {
		inicio = &t
	}
	if t, ok := parseFecha(m[2], 0); ok {
		fin = &t
	}
	return inicio, fin
}

func findRFC(text string) string {
	if m := rfcRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func findClabe(text string) string {
	if m := clabeRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func findCuenta(text string) string {
	if m := cuentaRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

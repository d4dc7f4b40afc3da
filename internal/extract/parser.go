package extract

import (
	"regexp"
	"strings"
	"time"
)

type dateFunc func(m []string, defaultYear int) (time.Time, bool)

// lineParser holds what differs between bank statement layouts: how a
// movement row begins and how its date token is read. Everything else
// (amount runs, description continuations, footer cutoffs) is shared.
type lineParser struct {
	banco         string
	rowStart      *regexp.Regexp
	dateFromMatch dateFunc
}

var (
	headerRowRe     = regexp.MustCompile(`(?i)\bFECHA\b.*\bSALDO\b`)
	leadingFolioRe  = regexp.MustCompile(`^(\d{5,})\s+`)
	detallesHdrRe   = regexp.MustCompile(`(?i)Detalle[s]?\s+de\s+movimientos`)
	saldoAnteriorRe = regexp.MustCompile(`(?i)SALDO\s+(?:FINAL\s+DEL\s+PERIODO\s+)?ANTERIOR`)
)

func (p *lineParser) Banco() string { return p.banco }

func (p *lineParser) Parse(text string) (*Statement, error) {
	st := &Statement{
		Banco:        p.banco,
		Empresa:      findEmpresa(text),
		RFC:          findRFC(text),
		Clabe:        findClabe(text),
		NumeroCuenta: findCuenta(text),
	}
	st.PeriodoInicio, st.PeriodoFin = parsePeriodo(text)

	defaultYear := 0
	if st.PeriodoFin != nil {
		defaultYear = st.PeriodoFin.Year()
	} else if st.PeriodoInicio != nil {
		defaultYear = st.PeriodoInicio.Year()
	}

	var cur *Movimiento
	flush := func() {
		if cur == nil {
			return
		}
		cur.Deposito, cur.Retiro = reconcileAmounts(cur.Descripcion, cur.Deposito, cur.Retiro)
		cur.Descripcion = compactSpaces(cur.Descripcion)
		st.Movimientos = append(st.Movimientos, *cur)
		cur = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := stripPageGarbage(raw)
		if line == "" {
			continue
		}
		up := strings.ToUpper(line)

		if headerRowRe.MatchString(up) || detallesHdrRe.MatchString(up) {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(up), "TOTAL") || saldoFinalRe.MatchString(up) || saldoAnteriorRe.MatchString(up) {
			flush()
			continue
		}

		if m := p.rowStart.FindStringSubmatch(line); m != nil {
			flush()
			fecha, ok := p.dateFromMatch(m, defaultYear)
			if !ok {
				continue
			}
			rest := cutAfterTotals(strings.TrimSpace(line[len(m[0]):]))
			mv := Movimiento{Fecha: fecha}
			if fm := leadingFolioRe.FindStringSubmatch(rest); fm != nil {
				mv.Folio = fm[1]
				rest = strings.TrimSpace(rest[len(fm[0]):])
			}
			desc, tail := tailAmounts(rest, 3)
			applyAmounts(&mv, desc, tail, hasTotalOrFinal(line))
			if !isGarbage(desc) {
				mv.Descripcion = desc
			}
			mv.ClaveRastreo = claveRastreo(line)
			cur = &mv
			continue
		}

		if cur == nil {
			continue
		}
		trimmed := cutAfterTotals(line)
		desc, tail := tailAmounts(trimmed, 3)
		if len(tail) > 0 {
			ref := desc
			if ref == "" {
				ref = cur.Descripcion
			}
			applyAmounts(cur, ref, tail, hasTotalOrFinal(line))
		}
		if cl := claveRastreo(line); cl != "" && cur.ClaveRastreo == "" {
			cur.ClaveRastreo = cl
		}
		if desc != "" && !isGarbage(desc) {
			cur.Descripcion = strings.TrimSpace(cur.Descripcion + " " + desc)
		}
	}
	flush()

	return st, nil
}

// applyAmounts maps a rightmost amount run onto the movement. Three amounts
// are the full deposit/withdrawal/balance columns; two are one movement
// amount plus balance; a lone amount is a balance unless the row carries a
// totals marker.
func applyAmounts(mv *Movimiento, desc string, tail []float64, totalsRow bool) {
	switch len(tail) {
	case 3:
		mv.Deposito = tail[0]
		mv.Retiro = tail[1]
		s := tail[2]
		mv.Saldo = &s
	case 2:
		mv.Retiro, mv.Deposito = classifyAmount(desc, tail[0])
		s := tail[1]
		mv.Saldo = &s
	case 1:
		if totalsRow {
			mv.Retiro, mv.Deposito = classifyAmount(desc, tail[0])
		} else {
			s := tail[0]
			mv.Saldo = &s
		}
	}
}

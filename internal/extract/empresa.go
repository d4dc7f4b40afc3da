package extract

import (
	"regexp"
	"strings"
)

// Company-name detection. Mexican statements print the razón social near the
// top of the first page; it is recognized by its corporate suffix (SA DE CV,
// S DE RL, AC, SC) and filtered against address and boilerplate lines.

const razonSuffix = `(?:S\.?\s*A\.?(?:\s*P\.?\s*I\.?)?\s*DE\s*C\.?\s*V\.?|` +
	`S\.?\s*DE\s*R\.?\s*L\.?(?:\s*DE\s*C\.?\s*V\.?)?|` +
	`A\.?\s*C\.?|S\.?\s*C\.?)`

var (
	razonLineRe = regexp.MustCompile(`(?i)^[A-ZÁÉÍÓÚÑ&\.\-,' ]+\s` + razonSuffix + `$`)
	razonAnyRe  = regexp.MustCompile(`(?i)([A-ZÁÉÍÓÚÑ&\.\-,' ]{6,}?\s` + razonSuffix + `)`)
	upperLineRe = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ&\.\-,' ]{6,}$`)
)

var addrTokens = []string{
	" CALLE", " AV ", " AV.", " AVENIDA", " PISO ", " NUM ", " NO.", " N°",
	" COL ", " COLONIA", " C.P", " CP",
	" MÉXICO", " MEXICO", " ESTADO", " MUNICIP", " DELEGACIÓN", " ALCALDIA", " ALCALDÍA", " BARRIO",
}

var empresaBlacklist = []string{
	"CONCEPTO", "FACTURA", "COMPROBANTE", "ESTADO DE CUENTA", "DETALLE",
	"MOVIMIENTOS", "PERIODO", "PERÍODO", "CUENTA",
	"SANTANDER", "BANORTE", "BBVA", "INBURSA", "BANCO",
}

func esCandidataEmpresa(u string) bool {
	padded := " " + strings.ToUpper(u) + " "
	if strings.ContainsAny(padded, "0123456789") {
		return false
	}
	for _, tok := range addrTokens {
		if strings.Contains(padded, tok) {
			return false
		}
	}
	for _, bad := range empresaBlacklist {
		if strings.Contains(padded, bad) {
			return false
		}
	}
	return true
}

// findEmpresa scans the statement text for the account holder's razón social.
// It tries, in order: a single line with a corporate suffix, two adjacent
// lines joined (the suffix often wraps), a broad suffix match anywhere in the
// leading text, and finally the longest plausible all-caps line.
func findEmpresa(text string) string {
	lines := nonEmptyLines(text, 120)

	for _, ln := range limit(lines, 15) {
		u := strings.ToUpper(compactSpaces(ln))
		if razonLineRe.MatchString(u) && esCandidataEmpresa(u) {
			return u
		}
	}
	for i := 0; i+1 < len(lines) && i < 12; i++ {
		u := strings.ToUpper(compactSpaces(lines[i] + " " + lines[i+1]))
		if razonLineRe.MatchString(u) && esCandidataEmpresa(u) {
			return u
		}
	}

	head := strings.Join(limit(lines, 60), "\n")
	var best string
	for _, m := range razonAnyRe.FindAllString(head, -1) {
		u := strings.ToUpper(compactSpaces(m))
		if esCandidataEmpresa(u) && len(u) > len(best) {
			best = u
		}
	}
	if best != "" {
		return best
	}

	for _, ln := range limit(lines, 20) {
		u := strings.ToUpper(compactSpaces(ln))
		if upperLineRe.MatchString(u) && esCandidataEmpresa(u) && len(u) > len(best) {
			best = u
		}
	}
	return best
}

func nonEmptyLines(text string, max int) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		lines = append(lines, ln)
		if len(lines) == max {
			break
		}
	}
	return lines
}

func limit(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

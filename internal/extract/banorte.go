package extract

import (
	"regexp"
	"time"
)

// Banorte rows start with dd-MMM-yy (two-digit year).
var banorteRowRe = regexp.MustCompile(`^\s*(\d{2})\s*-\s*([A-Za-zÁá]{3})\s*-\s*(\d{2})\b`)

func init() {
	register(&lineParser{
		banco:    "banorte",
		rowStart: banorteRowRe,
		dateFromMatch: func(m []string, _ int) (time.Time, bool) {
			return parseFecha(m[0], 0)
		},
	})
}

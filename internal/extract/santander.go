package extract

import (
	"regexp"
	"time"
)

// Santander rows start with dd-MMM-yyyy followed by a folio and description.
var santanderRowRe = regexp.MustCompile(`^\s*(\d{2})\s*-\s*([A-Za-zÁá]{3})\s*-\s*(\d{4})\b`)

func init() {
	register(&lineParser{
		banco:    "santander",
		rowStart: santanderRowRe,
		dateFromMatch: func(m []string, _ int) (time.Time, bool) {
			return parseFecha(m[0], 0)
		},
	})
}

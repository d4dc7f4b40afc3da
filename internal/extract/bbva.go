package extract

import (
	"regexp"
	"time"
)

// BBVA rows start with dd/MMM without a year; the year comes from the
// statement period.
var bbvaRowRe = regexp.MustCompile(`^\s*(\d{2})\s*[/\- ]\s*([A-Za-zÁá]{3})\b`)

func init() {
	register(&lineParser{
		banco:    "bbva",
		rowStart: bbvaRowRe,
		dateFromMatch: func(m []string, defaultYear int) (time.Time, bool) {
			if defaultYear == 0 {
				defaultYear = time.Now().UTC().Year()
			}
			return parseFecha(m[0], defaultYear)
		},
	})
}

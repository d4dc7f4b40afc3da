package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Inbursa rows start with a month abbreviation then the day (MMM dd); the
// year comes from the statement period.
var inbursaRowRe = regexp.MustCompile(`(?i)^\s*(ENE|FEB|MAR|ABR|MAY|JUN|JUL|AGO|SEP|SET|OCT|NOV|DIC)[\.,]?\s+(\d{1,2})\b`)

func init() {
	register(&lineParser{
		banco:    "inbursa",
		rowStart: inbursaRowRe,
		dateFromMatch: func(m []string, defaultYear int) (time.Time, bool) {
			if defaultYear == 0 {
				defaultYear = time.Now().UTC().Year()
			}
			mon, ok := mesAbrev[strings.ToLower(accentReplacer.Replace(m[1]))]
			if !ok {
				return time.Time{}, false
			}
			day, err := strconv.Atoi(m[2])
			if err != nil || day < 1 || day > 31 {
				return time.Time{}, false
			}
			return time.Date(defaultYear, mon, day, 0, 0, 0, 0, time.UTC), true
		},
	})
}

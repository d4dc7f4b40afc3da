package extract

import (
	"fmt"
	"time"
)

// Movimiento is one transaction row from a bank statement.
type Movimiento struct {
	Fecha        time.Time
	Folio        string
	Descripcion  string
	Deposito     float64
	Retiro       float64
	Saldo        *float64
	ClaveRastreo string
}

// Statement is the structured result of parsing one statement PDF.
type Statement struct {
	Banco         string
	Empresa       string
	RFC           string
	Clabe         string
	NumeroCuenta  string
	PeriodoInicio *time.Time
	PeriodoFin    *time.Time
	Movimientos   []Movimiento
}

// ClavesRastreo returns the distinct tracking codes found on movements, in
// statement order.
func (s *Statement) ClavesRastreo() []string {
	seen := make(map[string]struct{})
	var claves []string
	for _, m := range s.Movimientos {
		if m.ClaveRastreo == "" {
			continue
		}
		if _, ok := seen[m.ClaveRastreo]; ok {
			continue
		}
		seen[m.ClaveRastreo] = struct{}{}
		claves = append(claves, m.ClaveRastreo)
	}
	return claves
}

// Parser turns raw statement text into a Statement. Each supported bank has
// its own layout and therefore its own parser.
type Parser interface {
	Banco() string
	Parse(text string) (*Statement, error)
}

var parsers = map[string]Parser{}

func register(p Parser) {
	parsers[p.Banco()] = p
}

// ForBanco returns the parser registered for the bank.
func ForBanco(banco string) (Parser, error) {
	p, ok := parsers[banco]
	if !ok {
		return nil, fmt.Errorf("no parser for banco %q", banco)
	}
	return p, nil
}

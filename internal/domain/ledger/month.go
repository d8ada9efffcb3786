// Package ledger es el motor puro del libro mensual de almacén: saldos de apertura y cierre,
// visibilidad, estado y control de bajas a partir del historial de movimientos de un item.
// No hace I/O ni guarda estado; todas las funciones son deterministas.
package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/maestral4ik/warehouse1/internal/domain"
)

var monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Month es un mes calendario. El orden es lexicográfico por año y luego mes.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth interpreta "YYYY-MM". Cualquier otra forma devuelve domain.ErrInvalidMonthFormat.
func ParseMonth(s string) (Month, error) {
	m := monthPattern.FindStringSubmatch(s)
	if m == nil {
		return Month{}, fmt.Errorf("%w: %q", domain.ErrInvalidMonthFormat, s)
	}
	year, _ := strconv.Atoi(m[1])
	mon, _ := strconv.Atoi(m[2])
	if mon < 1 || mon > 12 {
		return Month{}, fmt.Errorf("%w: %q", domain.ErrInvalidMonthFormat, s)
	}
	return Month{Year: year, Month: time.Month(mon)}, nil
}

// MustParseMonth como ParseMonth pero entra en pánico; solo para constantes y tests.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf devuelve el mes de una fecha, ignorando el día.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String devuelve "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Compare devuelve -1, 0 o 1.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}
	return 0
}

func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }
func (m Month) After(o Month) bool  { return m.Compare(o) > 0 }
func (m Month) Equal(o Month) bool  { return m.Compare(o) == 0 }

// Contains indica si la fecha cae dentro del mes.
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t).Equal(m)
}

// Next devuelve el mes siguiente.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Prev devuelve el mes anterior.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// FirstDay primer día del mes en loc.
func (m Month) FirstDay(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// LastDay último día del mes en loc.
func (m Month) LastDay(loc *time.Location) time.Time {
	return m.Next().FirstDay(loc).AddDate(0, 0, -1)
}

// MarshalText serializa como "YYYY-MM".
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText acepta "YYYY-MM".
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Day normaliza t a su día calendario en UTC a medianoche, tal como se guardan las fechas
// de los movimientos. El día se toma en la zona de t.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

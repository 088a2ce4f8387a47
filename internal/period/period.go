package period

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// Mode selects how a period is encoded on the wire.
type Mode string

const (
	ModeISO    Mode = "iso"
	ModeLegacy Mode = "legacy"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeISO:
		return ModeISO, nil
	case ModeLegacy:
		return ModeLegacy, nil
	default:
		return "", fmt.Errorf("unknown date mode: %q", s)
	}
}

// Query parameter names understood by the backend.
const (
	ParamStart = "dataInicio"
	ParamEnd   = "dataFim"

	ParamStartDay   = "diaInicio"
	ParamStartMonth = "mesInicio"
	ParamStartYear  = "anoInicio"
	ParamEndDay     = "diaFim"
	ParamEndMonth   = "mesFim"
	ParamEndYear    = "anoFim"
)

// ValidationError rejects user input before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Legacy is the three-part date used by the old forms.
type Legacy struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// FromISO splits an ISO date on its two separators.
func FromISO(s string) (Legacy, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Legacy{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	l := Legacy{Year: parts[0], Month: parts[1], Day: parts[2]}
	if _, err := l.ISO(); err != nil {
		return Legacy{}, err
	}
	return l, nil
}

// ISO zero-pads the parts and checks that the result names a real calendar
// day.
func (l Legacy) ISO() (string, error) {
	y, m, d, err := l.ints()
	if err != nil {
		return "", err
	}
	if y < 1 || y > 9999 {
		return "", fmt.Errorf("invalid date %s/%s/%s: year out of range", l.Day, l.Month, l.Year)
	}
	iso := fmt.Sprintf("%04d-%02d-%02d", y, m, d)

	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return "", fmt.Errorf("invalid date %s/%s/%s", l.Day, l.Month, l.Year)
	}
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", fmt.Errorf("invalid date %s/%s/%s", l.Day, l.Month, l.Year)
	}
	return iso, nil
}

// Padded returns the same date with day and month padded to two digits and
// the year to four.
func (l Legacy) Padded() (Legacy, error) {
	iso, err := l.ISO()
	if err != nil {
		return Legacy{}, err
	}
	return FromISO(iso)
}

func (l Legacy) Time() (time.Time, error) {
	iso, err := l.ISO()
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(isoLayout, iso)
}

func (l Legacy) String() string {
	return fmt.Sprintf("%s/%s/%s", l.Day, l.Month, l.Year)
}

func (l Legacy) ints() (int, int, int, error) {
	y, err := digits(l.Year)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year %q", l.Year)
	}
	m, err := digits(l.Month)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month %q", l.Month)
	}
	d, err := digits(l.Day)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid day %q", l.Day)
	}
	return y, m, d, nil
}

func digits(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 4 {
		return 0, strconv.ErrSyntax
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// Period is a date range. Start is never after End.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// New validates both ISO dates and their order.
func New(start, end string) (Period, error) {
	s, err := FromISO(start)
	if err != nil {
		return Period{}, &ValidationError{Field: ParamStart, Message: err.Error()}
	}
	e, err := FromISO(end)
	if err != nil {
		return Period{}, &ValidationError{Field: ParamEnd, Message: err.Error()}
	}
	return FromLegacy(s, e)
}

func FromLegacy(start, end Legacy) (Period, error) {
	s, err := start.ISO()
	if err != nil {
		return Period{}, &ValidationError{Field: ParamStart, Message: err.Error()}
	}
	e, err := end.ISO()
	if err != nil {
		return Period{}, &ValidationError{Field: ParamEnd, Message: err.Error()}
	}
	// zero-padded ISO dates order lexically
	if s > e {
		return Period{}, &ValidationError{
			Field:   ParamStart,
			Message: fmt.Sprintf("start date %s is after end date %s", s, e),
		}
	}
	return Period{Start: s, End: e}, nil
}

// FromQuery reads a period from either the ISO pair or the six legacy
// fields. The ISO pair wins when both are present.
func FromQuery(q url.Values) (Period, error) {
	if q.Get(ParamStart) != "" || q.Get(ParamEnd) != "" {
		return New(q.Get(ParamStart), q.Get(ParamEnd))
	}
	return FromLegacy(
		Legacy{Day: q.Get(ParamStartDay), Month: q.Get(ParamStartMonth), Year: q.Get(ParamStartYear)},
		Legacy{Day: q.Get(ParamEndDay), Month: q.Get(ParamEndMonth), Year: q.Get(ParamEndYear)},
	)
}

func (p Period) Legacy() (Legacy, Legacy, error) {
	s, err := FromISO(p.Start)
	if err != nil {
		return Legacy{}, Legacy{}, err
	}
	e, err := FromISO(p.End)
	if err != nil {
		return Legacy{}, Legacy{}, err
	}
	return s, e, nil
}

// Query encodes the period for the backend.
func (p Period) Query(mode Mode) url.Values {
	q := url.Values{}
	p.Encode(q, mode)
	return q
}

func (p Period) Encode(q url.Values, mode Mode) {
	if mode != ModeLegacy {
		q.Set(ParamStart, p.Start)
		q.Set(ParamEnd, p.End)
		return
	}
	s, e, err := p.Legacy()
	if err != nil {
		return
	}
	q.Set(ParamStartDay, s.Day)
	q.Set(ParamStartMonth, s.Month)
	q.Set(ParamStartYear, s.Year)
	q.Set(ParamEndDay, e.Day)
	q.Set(ParamEndMonth, e.Month)
	q.Set(ParamEndYear, e.Year)
}

func (p Period) String() string {
	return fmt.Sprintf("%s..%s", p.Start, p.End)
}

package period

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyISO(t *testing.T) {
	testCases := []struct {
		name  string
		in    Legacy
		want  string
		valid bool
	}{
		{"pads day and month", Legacy{Day: "5", Month: "2", Year: "2024"}, "2024-02-05", true},
		{"leap day", Legacy{Day: "29", Month: "02", Year: "2024"}, "2024-02-29", true},
		{"year one", Legacy{Day: "1", Month: "1", Year: "1"}, "0001-01-01", true},
		{"year 9999", Legacy{Day: "31", Month: "12", Year: "9999"}, "9999-12-31", true},
		{"feb 31", Legacy{Day: "31", Month: "02", Year: "2024"}, "", false},
		{"feb 29 non leap", Legacy{Day: "29", Month: "02", Year: "2023"}, "", false},
		{"april 31", Legacy{Day: "31", Month: "04", Year: "2024"}, "", false},
		{"month 13", Legacy{Day: "1", Month: "13", Year: "2024"}, "", false},
		{"day zero", Legacy{Day: "0", Month: "1", Year: "2024"}, "", false},
		{"year zero", Legacy{Day: "1", Month: "1", Year: "0"}, "", false},
		{"letters", Legacy{Day: "aa", Month: "1", Year: "2024"}, "", false},
		{"empty", Legacy{}, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.in.ISO()
			if !tc.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	days := []time.Time{
		time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC),
		time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	// walk a whole leap year as well
	for d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	for _, d := range days {
		l := Legacy{
			Day:   d.Format("2"),
			Month: d.Format("1"),
			Year:  d.Format("2006"),
		}
		iso, err := l.ISO()
		require.NoError(t, err)
		assert.Equal(t, d.Format(isoLayout), iso)

		back, err := FromISO(iso)
		require.NoError(t, err)
		assert.Equal(t, Legacy{Day: d.Format("02"), Month: d.Format("01"), Year: d.Format("2006")}, back)

		padded, err := l.Padded()
		require.NoError(t, err)
		assert.Equal(t, back, padded)
	}
}

func TestFromISO(t *testing.T) {
	_, err := FromISO("2024/01/01")
	assert.Error(t, err)

	_, err = FromISO("2023-02-29")
	assert.Error(t, err)

	l, err := FromISO(" 2024-03-09 ")
	require.NoError(t, err)
	assert.Equal(t, Legacy{Day: "09", Month: "03", Year: "2024"}, l)
}

func TestNew(t *testing.T) {
	t.Run("start after end is rejected", func(t *testing.T) {
		_, err := New("2024-03-02", "2024-03-01")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ParamStart, verr.Field)
	})

	t.Run("same day is accepted", func(t *testing.T) {
		p, err := New("2024-03-01", "2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", p.Start)
	})

	t.Run("invalid end date names the field", func(t *testing.T) {
		_, err := New("2024-03-01", "2024-02-30")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ParamEnd, verr.Field)
	})

	t.Run("legacy and iso agree", func(t *testing.T) {
		iso, err := New("2023-12-01", "2024-01-15")
		require.NoError(t, err)
		legacy, err := FromLegacy(
			Legacy{Day: "1", Month: "12", Year: "2023"},
			Legacy{Day: "15", Month: "1", Year: "2024"},
		)
		require.NoError(t, err)
		assert.Equal(t, iso, legacy)
	})
}

func TestQuery(t *testing.T) {
	p, err := New("2024-01-05", "2024-02-10")
	require.NoError(t, err)

	iso := p.Query(ModeISO)
	assert.Equal(t, "2024-01-05", iso.Get(ParamStart))
	assert.Equal(t, "2024-02-10", iso.Get(ParamEnd))

	legacy := p.Query(ModeLegacy)
	assert.Equal(t, url.Values{
		ParamStartDay:   {"05"},
		ParamStartMonth: {"01"},
		ParamStartYear:  {"2024"},
		ParamEndDay:     {"10"},
		ParamEndMonth:   {"02"},
		ParamEndYear:    {"2024"},
	}, legacy)

	back, err := FromQuery(legacy)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	back, err = FromQuery(iso)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeISO, m)

	m, err = ParseMode("LEGACY")
	require.NoError(t, err)
	assert.Equal(t, ModeLegacy, m)

	_, err = ParseMode("unix")
	assert.Error(t, err)
}

package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    Date
		wantErr bool
	}{
		{
			name:   "week ending",
			header: "Week ending May 16, 2009",
			want:   Date{Month: "May", Day: "16", Year: "2009"},
		},
		{
			name:   "surrounding text",
			header: "TABLE II. Provisional cases, week ending January 3, 2009 (53rd Week)*",
			want:   Date{Month: "January", Day: "3", Year: "2009"},
		},
		{
			name:   "first date wins",
			header: "March 7, 2010 compared with March 8, 2009",
			want:   Date{Month: "March", Day: "7", Year: "2010"},
		},
		{
			name:   "extra spacing",
			header: "Week ending  December 31,2011",
			want:   Date{Month: "December", Day: "31", Year: "2011"},
		},
		{
			name:    "abbreviated month",
			header:  "Week ending Dec. 31, 2011",
			wantErr: true,
		},
		{
			name:    "empty",
			header:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDate(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoDateFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		year     string
		week     string
		tableID  string
		wantErr  bool
	}{
		{name: "table 2J", filename: "2013_wk21_table2J.tab", year: "2013", week: "21", tableID: "2J"},
		{name: "full path", filename: "/data/tabdatafiles/2008_wk53_table2H.tab", year: "2008", week: "53", tableID: "2H"},
		{name: "single digit week", filename: "1996_wk1_table1.tab", year: "1996", week: "1", tableID: "1"},
		{name: "csv extension", filename: "2013_wk21_table2J.csv", wantErr: true},
		{name: "missing week", filename: "2013_table2J.tab", wantErr: true},
		{name: "trailing junk", filename: "2013_wk21_table2J.tab.bak", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, week, tableID, err := ParseFilename(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedFilename)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, year)
			assert.Equal(t, tt.week, week)
			assert.Equal(t, tt.tableID, tableID)
		})
	}
}

func TestExtractMetadata(t *testing.T) {
	md, err := ExtractMetadata("Week ending May 16, 2009", "data/2009_wk19_table2H.tab")
	require.NoError(t, err)

	assert.Equal(t, FileMetadata{
		Date:     Date{Month: "May", Day: "16", Year: "2009"},
		Year:     "2009",
		Week:     "19",
		TableID:  "2H",
		Filename: "2009_wk19_table2H.tab",
	}, md)

	year, week := md.YearWeek()
	assert.Equal(t, "2009", year)
	assert.Equal(t, "19", week)

	again, err := ExtractMetadata("Week ending May 16, 2009", "data/2009_wk19_table2H.tab")
	require.NoError(t, err)
	assert.Equal(t, md, again)
}

func TestExtractMetadata_Errors(t *testing.T) {
	_, err := ExtractMetadata("no date here", "2009_wk19_table2H.tab")
	assert.ErrorIs(t, err, ErrNoDateFound)

	_, err = ExtractMetadata("Week ending May 16, 2009", "table2H.tab")
	assert.ErrorIs(t, err, ErrMalformedFilename)
}

func TestDate_Time(t *testing.T) {
	got, err := Date{Month: "May", Day: "16", Year: "2009"}.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2009, time.May, 16, 0, 0, 0, 0, time.UTC), got)

	_, err = Date{Month: "Maybe", Day: "16", Year: "2009"}.Time()
	assert.Error(t, err)

	_, err = Date{Month: "May", Day: "x", Year: "2009"}.Time()
	assert.Error(t, err)
}

func TestDate_String(t *testing.T) {
	assert.Equal(t, "May 16, 2009", Date{Month: "May", Day: "16", Year: "2009"}.String())
	assert.Equal(t, "", Date{}.String())
	assert.True(t, Date{}.IsZero())
}

func TestMonthNumber(t *testing.T) {
	m, ok := MonthNumber("September")
	assert.True(t, ok)
	assert.Equal(t, time.September, m)

	_, ok = MonthNumber("Sept")
	assert.False(t, ok)
}

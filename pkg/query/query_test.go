package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

const syphilis = "Syphilis, primary & secondary current week"

// bulletin parses a small synthetic table 2 file.
func bulletin(t *testing.T, week int, columns []string, rows ...string) *parser.ParsedFile {
	t.Helper()
	s := parser.Sections{
		Header:      fmt.Sprintf("Week ending March %d, 2009", week),
		ColumnNames: append([]string{"TABLE II"}, columns...),
		DataRows:    append([]string{"Data", "test"}, rows...),
		Footnotes:   []string{"N: Not notifiable."},
	}
	file, err := parser.New().Parse(s.Lines(), fmt.Sprintf("2009_wk%02d_table2H.tab", week))
	require.NoError(t, err)
	return file
}

func TestTimeSeries_SkipsFilesWithoutColumn(t *testing.T) {
	files := []*parser.ParsedFile{
		bulletin(t, 1, []string{"Reporting area", syphilis}, "Oreg.\t5", "Wash.\t3"),
		bulletin(t, 2, []string{"Reporting area", "Chlamydia"}, "Oreg.\t50"),
		bulletin(t, 3, []string{"Reporting area", syphilis}, "Wash.\t4"),
	}

	points := Collect(TimeSeries(files, syphilis, "Oreg.", "N"))
	require.Len(t, points, 2)

	assert.Equal(t, "5", points[0].Value)
	assert.Equal(t, "1", points[0].Date.Day)
	assert.Equal(t, "2009_wk01_table2H.tab", points[0].Source)

	assert.Equal(t, "N", points[1].Value)
	assert.Equal(t, "3", points[1].Date.Day)
}

func TestTimeSeries_OrderAndDates(t *testing.T) {
	var files []*parser.ParsedFile
	for _, week := range []int{9, 2, 5} {
		files = append(files, bulletin(t, week, []string{"Reporting area", syphilis}, "Oreg.\t1"))
	}

	points := Collect(TimeSeries(files, syphilis, "Oreg.", ""))
	require.Len(t, points, len(files))
	for i, p := range points {
		assert.Equal(t, files[i].Metadata.Date, p.Date)
	}
}

func TestTimeSeries_NoFileHasColumn(t *testing.T) {
	files := []*parser.ParsedFile{
		bulletin(t, 1, []string{"Reporting area", "Chlamydia"}, "Oreg.\t50"),
	}

	points := Collect(TimeSeries(files, syphilis, "Oreg.", "N"))
	assert.NotNil(t, points)
	assert.Empty(t, points)

	assert.Empty(t, Collect(TimeSeries(nil, syphilis, "Oreg.", "N")))
}

func TestTimeSeries_Restartable(t *testing.T) {
	files := []*parser.ParsedFile{
		bulletin(t, 1, []string{"Reporting area", syphilis}, "Oreg.\t5"),
		bulletin(t, 2, []string{"Reporting area", syphilis}, "Oreg.\t6"),
	}

	seq := TimeSeries(files, syphilis, "Oreg.", "N")
	assert.Equal(t, Collect(seq), Collect(seq))
}

func TestTimeSeries_EarlyStop(t *testing.T) {
	files := []*parser.ParsedFile{
		bulletin(t, 1, []string{"Reporting area", syphilis}, "Oreg.\t5"),
		bulletin(t, 2, []string{"Reporting area", syphilis}, "Oreg.\t6"),
		bulletin(t, 3, []string{"Reporting area", syphilis}, "Oreg.\t7"),
	}

	var got []string
	for p := range TimeSeries(files, syphilis, "Oreg.", "N") {
		got = append(got, p.Value)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"5", "6"}, got)
}

func TestUniqueFields(t *testing.T) {
	files := []*parser.ParsedFile{
		bulletin(t, 1, []string{"Reporting area", syphilis}, "Oreg.\t5", "Wash.\t3"),
		bulletin(t, 2, []string{"Reporting area", "Chlamydia"}, "Oreg.\t50", "Idaho\t2"),
	}

	fields := UniqueFields(files)
	assert.Equal(t, []string{"Chlamydia", "Reporting area", syphilis}, fields.Columns)
	assert.Equal(t, []string{"Idaho", "Oreg.", "Wash."}, fields.Rows)

	empty := UniqueFields(nil)
	assert.Empty(t, empty.Columns)
	assert.Empty(t, empty.Rows)
}

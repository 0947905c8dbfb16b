package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	syphilisColumn  = "Syphilis, primary & secondary current week"
	chlamydiaColumn = "Chlamydia current week"
)

// sampleSections is a raw (not postprocessed) table 2 bulletin.
func sampleSections() Sections {
	return Sections{
		Header: "Week ending May 16, 2009 (19th Week)*",
		ColumnNames: []string{
			"TABLE II. (Part 8) Provisional cases of selected notifiable diseases",
			"Reporting area",
			syphilisColumn,
			chlamydiaColumn,
		},
		DataRows: []string{
			"Data",
			"test",
			"United States\t120\t2000\t\t",
			"Oreg.\t5\t100\t\t",
			"Wash.\t3\t-\t\t",
		},
		Footnotes: []string{
			"-: No reported cases.",
			"N: Not notifiable.",
		},
		Trailer: []string{},
	}
}

func sampleLines() RawLines {
	return sampleSections().Lines()
}

func writeBulletin(t *testing.T, dir, name string, lines RawLines) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

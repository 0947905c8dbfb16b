package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

const syphilis = "Syphilis, primary & secondary current week"

// bulletinLines renders a table 2 bulletin for the given week of 2009.
func bulletinLines(week int, rows ...string) parser.RawLines {
	if len(rows) == 0 {
		rows = []string{"Oreg.\t5", "Wash.\t3"}
	}
	s := parser.Sections{
		Header:      fmt.Sprintf("Week ending May %d, 2009", week),
		ColumnNames: []string{"TABLE II. (Part 8)", "Reporting area", syphilis},
		DataRows:    append([]string{"Data", "test"}, rows...),
		Footnotes:   []string{"N: Not notifiable."},
	}
	return s.Lines()
}

func writeLines(t *testing.T, path string, lines parser.RawLines) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// writeBulletin writes 2009_wk<week>_table2H.tab into dir.
func writeBulletin(t *testing.T, dir string, week int, rows ...string) string {
	t.Helper()
	name := fmt.Sprintf("2009_wk%02d_table2H.tab", week)
	return writeLines(t, filepath.Join(dir, name), bulletinLines(week, rows...))
}

// writeTruncated writes a bulletin that ends inside its column block.
func writeTruncated(t *testing.T, dir string, week int) string {
	t.Helper()
	name := fmt.Sprintf("2009_wk%02d_table2H.tab", week)
	return writeLines(t, filepath.Join(dir, name), bulletinLines(week)[:5])
}

// writeConfig writes a config whose sources glob every bulletin in dir,
// followed by extra YAML.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	config := "sources:\n  - " + filepath.Join(dir, "*.tab") + "\n" + extra
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	return path
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	ExitCode = 0
	t.Cleanup(func() { ExitCode = 0 })

	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

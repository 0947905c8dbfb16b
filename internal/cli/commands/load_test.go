package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ccollicutt/mmwrtab/pkg/logging"
	"github.com/ccollicutt/mmwrtab/pkg/metrics"
	"github.com/ccollicutt/mmwrtab/pkg/parser"
)

// fakeSaver records saved bulletins instead of writing to MySQL.
type fakeSaver struct {
	schemaErr error
	failOn    string
	schema    bool
	saved     []string
}

func (f *fakeSaver) EnsureSchema(context.Context) error {
	f.schema = true
	return f.schemaErr
}

func (f *fakeSaver) SaveFile(_ context.Context, file *parser.ParsedFile) (int, error) {
	if file.Metadata.Filename == f.failOn {
		return 0, errors.New("connection reset")
	}
	f.saved = append(f.saved, file.Metadata.Filename)
	cells := 0
	for _, rows := range file.Table {
		cells += len(rows)
	}
	return cells, nil
}

func testRun() *run {
	return &run{
		ctx:     context.Background(),
		logger:  logging.Discard(),
		metrics: metrics.New(),
	}
}

func parsedBulletins(t *testing.T, weeks ...int) []*parser.ParsedFile {
	t.Helper()
	var files []*parser.ParsedFile
	for _, week := range weeks {
		name := fmt.Sprintf("2009_wk%02d_table2H.tab", week)
		file, err := parser.New().Parse(bulletinLines(week), name)
		if err != nil {
			t.Fatalf("parsing fixture: %v", err)
		}
		files = append(files, file)
	}
	return files
}

func TestLoadFiles(t *testing.T) {
	r := testRun()
	db := &fakeSaver{}

	total, err := loadFiles(r, db, parsedBulletins(t, 19, 20))
	if err != nil {
		t.Fatalf("loadFiles: %v", err)
	}

	if !db.schema {
		t.Error("schema was not ensured")
	}
	if len(db.saved) != 2 {
		t.Errorf("saved %v, want 2 bulletins", db.saved)
	}
	// 2 columns x 2 row labels per bulletin
	if total != 8 {
		t.Errorf("total = %d, want 8", total)
	}
	if got := testutil.ToFloat64(r.metrics.CellsStored); got != 8 {
		t.Errorf("cells metric = %v, want 8", got)
	}
}

func TestLoadFiles_StopsAtFirstError(t *testing.T) {
	r := testRun()
	db := &fakeSaver{failOn: "2009_wk20_table2H.tab"}

	total, err := loadFiles(r, db, parsedBulletins(t, 19, 20, 21))
	if err == nil {
		t.Fatal("expected an error")
	}
	if total != 4 || len(db.saved) != 1 {
		t.Errorf("got total %d and saved %v, want only the first bulletin", total, db.saved)
	}
}

func TestLoadFiles_SchemaError(t *testing.T) {
	db := &fakeSaver{schemaErr: errors.New("access denied")}

	if _, err := loadFiles(testRun(), db, parsedBulletins(t, 19)); err == nil {
		t.Fatal("expected schema error")
	}
	if len(db.saved) != 0 {
		t.Errorf("nothing should be saved, got %v", db.saved)
	}
}

func TestRunLoad_InvalidStore(t *testing.T) {
	dir := t.TempDir()
	writeBulletin(t, dir, 19)
	configPath := writeConfig(t, dir, "store:\n  dbname: mmwr\n")

	_, err := execute(t, NewLoadCommand(), configPath)
	if err == nil || !strings.Contains(err.Error(), "store") {
		t.Errorf("Expected store validation error, got %v", err)
	}
}

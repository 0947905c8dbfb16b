package commands

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// wonderServer lists table 2H for 2009 week 19 only, and fails exports of
// table 4.
func wonderServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/mmwr/mmwrmorb2.asp", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mmwr_week") != "19" {
			fmt.Fprint(w, "<html><body>No tables</body></html>")
			return
		}
		fmt.Fprint(w, `<html><body><select name="mmwr_table">
<option value="2H">Table II (Part 8)</option>
<option value="4">Table IV</option>
</select></body></html>`)
	})
	mux.HandleFunc("/mmwr/mmwr_reps.asp", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mmwr_table") == "4" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, strings.Join(bulletinLines(19), "\n")+"\n")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func fetchConfig(t *testing.T, baseURL, outDir, extra string) string {
	t.Helper()
	return writeConfig(t, outDir, fmt.Sprintf(`fetch:
  base_url: %s
  output_dir: %s
  start_year: 2009
  end_year: 2009
  start_week: 19
  end_week: 20
  rate: 1000
  burst: 10
`, baseURL, outDir)+extra)
}

func TestRunFetch_ListsAndDownloads(t *testing.T) {
	server := wonderServer(t)
	outDir := filepath.Join(t.TempDir(), "tabdatafiles")
	configPath := fetchConfig(t, server.URL, outDir, "")
	metricsPath := filepath.Join(t.TempDir(), "fetch.prom")

	out, err := execute(t, NewFetchCommand(), configPath, "--metrics-file", metricsPath)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1 for the failed table", ExitCode)
	}

	if !strings.Contains(out, "Fetch: 1 tables saved") || !strings.Contains(out, "1 failed") {
		t.Errorf("Unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "1 of 2 listed weeks had no tables") {
		t.Errorf("Expected empty week count:\n%s", out)
	}
	if !strings.Contains(out, "2009 week 19 table 4") {
		t.Errorf("Expected the failed table in output:\n%s", out)
	}

	saved := filepath.Join(outDir, "2009_wk19_table2H.tab")
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("expected %s: %v", saved, err)
	}

	// The downloaded bulletin is parseable by the parse command
	if _, err := execute(t, NewParseCommand(), configPath, "-q"); err != nil {
		t.Errorf("parse of fetched bulletin failed: %v", err)
	}
	if ExitCode != 0 {
		t.Errorf("parse ExitCode = %d, want 0", ExitCode)
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), `mmwrtab_fetch_requests_total{kind="export",status="503"} 1`) {
		t.Errorf("Missing failed export in metrics:\n%s", data)
	}
}

func TestRunFetch_FixedTables(t *testing.T) {
	server := wonderServer(t)
	outDir := t.TempDir()
	configPath := fetchConfig(t, server.URL, outDir, "  tables: [\"2H\"]\n")

	out, err := execute(t, NewFetchCommand(), configPath, "-q")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode)
	}
	// Weeks 19 and 20 are fetched without listing
	if !strings.Contains(out, "Fetch: 2 tables saved") {
		t.Errorf("Unexpected summary:\n%s", out)
	}
	if strings.Contains(out, "listed weeks") {
		t.Errorf("No week should be listed with fixed tables:\n%s", out)
	}
}

func TestRunFetch_MissingFetchSection(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "")

	_, err := execute(t, NewFetchCommand(), configPath)
	if err == nil || !strings.Contains(err.Error(), "fetch") {
		t.Errorf("Expected fetch validation error, got %v", err)
	}
}

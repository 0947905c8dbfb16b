package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ccollicutt/mmwrtab/pkg/config"
	"github.com/ccollicutt/mmwrtab/pkg/parser"
	"github.com/ccollicutt/mmwrtab/pkg/store"

	"github.com/spf13/cobra"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose common configuration issues",
		Long: `Diagnose common configuration issues.

This command checks your configuration file for common problems:
- Config file syntax and structure
- Bulletin source existence and accessibility
- Whether a sample bulletin parses
- Fetch and store sections, when present
- Webhook settings

Example:
  mmwrtab diagnose config.yaml
  mmwrtab diagnose -v config.yaml  # verbose output, also tests connectivity`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check config file existence
	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Parse config file
	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == "error" {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Check bulletin sources
	results = append(results, checkSources(cfg)...)

	// 4. Try parsing one bulletin
	results = append(results, checkSampleBulletin(ctx, cfg)...)

	// 5. Fetch and store sections
	results = append(results, checkFetch(cfg, opts)...)
	results = append(results, checkStore(ctx, cfg, opts)...)

	// 6. Check webhooks configuration
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'mmwrtab inspect <tab-file> --write-config config.yaml' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Use 'mmwrtab inspect <tab-file> --write-config config.yaml' to generate a starter config",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		switch {
		case strings.Contains(err.Error(), "yaml"):
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		case strings.Contains(err.Error(), "sources"):
			result.Suggests = []string{
				"Add a sources section or a file_list to your config",
				"Example: sources:\n  - tabdatafiles/*_table2*.tab",
			}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Sources: %d", len(cfg.Sources)),
		fmt.Sprintf("Webhooks: %d", len(cfg.Webhooks)),
	}
	if cfg.FileList != "" {
		result.Details = append(result.Details, fmt.Sprintf("File list: %s", cfg.FileList))
	}
	return cfg, result
}

func checkSources(cfg *config.Config) []DiagnosticResult {
	results := []DiagnosticResult{}

	for _, source := range cfg.Sources {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Source: %s", source),
		}

		// Check if it's a glob pattern
		if strings.ContainsAny(source, "*?[") {
			matches, err := filepath.Glob(source)
			if err != nil {
				result.Status = "error"
				result.Message = fmt.Sprintf("Invalid glob pattern: %v", err)
			} else if len(matches) == 0 {
				result.Status = "warning"
				result.Message = "Glob pattern matches no files"
				result.Suggests = []string{
					"Check if the bulletins exist at this path",
					"Use 'mmwrtab fetch' to download bulletins",
				}
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("Matches %d file(s)", len(matches))
				result.Details = append(result.Details, matches...)
			}
		} else {
			info, err := os.Stat(source)
			switch {
			case os.IsNotExist(err):
				result.Status = "error"
				result.Message = "File does not exist"
				result.Suggests = []string{"Check if the bulletin path is correct"}
			case err != nil:
				result.Status = "error"
				result.Message = fmt.Sprintf("Cannot access file: %v", err)
				result.Suggests = []string{"Check file permissions"}
			case info.IsDir():
				result.Status = "error"
				result.Message = "Path is a directory, not a file"
				result.Suggests = []string{
					"Use a glob pattern to match bulletins in a directory",
					"Example: tabdatafiles/*.tab",
				}
			case info.Size() == 0:
				result.Status = "warning"
				result.Message = "File is empty (0 bytes)"
			default:
				result.Status = "ok"
				result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
			}
		}
		results = append(results, result)
	}

	if cfg.FileList != "" {
		result := DiagnosticResult{
			Check: fmt.Sprintf("File List: %s", cfg.FileList),
		}
		listed, err := parser.ReadFileList(cfg.FileList, cfg.ListDir)
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot read file list: %v", err)
		} else {
			missing := []string{}
			for _, f := range listed {
				if _, err := os.Stat(f); err != nil {
					missing = append(missing, f)
				}
			}
			if len(missing) > 0 {
				result.Status = "warning"
				result.Message = fmt.Sprintf("%d of %d listed files are missing", len(missing), len(listed))
				result.Details = missing
				result.Suggests = []string{"Set list_dir when the list holds bare filenames"}
			} else {
				result.Status = "ok"
				result.Message = fmt.Sprintf("Lists %d file(s)", len(listed))
			}
		}
		results = append(results, result)
	}

	files, err := discover(cfg)
	if err == nil && !slices.ContainsFunc(files, isFile) {
		msg := "No bulletins found"
		if cfg.Contains != "" {
			msg = fmt.Sprintf("No bulletins found containing %q", cfg.Contains)
		}
		results = append(results, DiagnosticResult{
			Check:    "Bulletins Summary",
			Status:   "error",
			Message:  msg,
			Suggests: []string{"Ensure at least one bulletin exists and is readable"},
		})
	}

	return results
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func checkSampleBulletin(ctx context.Context, cfg *config.Config) []DiagnosticResult {
	files, err := discover(cfg)
	if err != nil {
		return nil
	}
	i := slices.IndexFunc(files, isFile)
	if i < 0 {
		return nil
	}

	sample := files[i]
	result := DiagnosticResult{
		Check: fmt.Sprintf("Parse Test: %s", filepath.Base(sample)),
	}

	p := parser.New(parser.WithStrictColumns(cfg.StrictColumns))
	parsed, err := p.ParseFile(ctx, sample)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Bulletin does not parse [%s]", parser.Kind(err))
		result.Details = []string{truncate(err.Error(), 120)}
		result.Suggests = []string{
			"Use 'mmwrtab inspect " + sample + "' to see how the file is split",
		}
		if parser.Kind(err) == parser.KindMalformedFilename {
			result.Suggests = append(result.Suggests, "Bulletins must be named <year>_wk<week>_table<id>.tab")
		}
		return []DiagnosticResult{result}
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Table %s, %s: %d columns", parsed.Metadata.TableID, parsed.Metadata.Date, len(parsed.Table))
	if len(parsed.Warnings) > 0 {
		result.Status = "warning"
		for _, warn := range parsed.Warnings {
			result.Details = append(result.Details, truncate(warn.Error(), 120))
		}
		result.Suggests = []string{"Duplicate column names keep the last column; set strict_columns to fail instead"}
	}
	return []DiagnosticResult{result}
}

func checkFetch(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	if cfg.Fetch.StartYear == 0 {
		if opts.Verbose {
			return []DiagnosticResult{{
				Check:   "Fetch",
				Status:  "ok",
				Message: "No fetch section configured (optional)",
			}}
		}
		return nil
	}

	result := DiagnosticResult{Check: "Fetch"}
	if err := config.ValidateFetch(cfg); err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return []DiagnosticResult{result}
	}

	f := cfg.Fetch
	result.Status = "ok"
	result.Message = fmt.Sprintf("%d week %d to %d week %d into %s", f.StartYear, f.StartWeek, f.EndYear, f.EndWeek, f.OutputDir)
	if len(f.Tables) > 0 {
		result.Details = []string{fmt.Sprintf("Tables: %s", strings.Join(f.Tables, ", "))}
	} else {
		result.Details = []string{"Tables: listed from the site each week"}
	}
	return []DiagnosticResult{result}
}

func checkStore(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	if cfg.Store.DBName == "" {
		if opts.Verbose {
			return []DiagnosticResult{{
				Check:   "Store",
				Status:  "ok",
				Message: "No store section configured (optional)",
			}}
		}
		return nil
	}

	result := DiagnosticResult{Check: "Store"}
	if err := config.ValidateStore(cfg); err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return []DiagnosticResult{result}
	}

	s := cfg.Store
	result.Status = "ok"
	result.Message = fmt.Sprintf("%s@%s:%s/%s", s.User, s.Host, s.Port, s.DBName)
	if s.Password == "" {
		result.Status = "warning"
		result.Details = []string{"No password configured"}
		result.Suggests = []string{"Set password: ${MMWRTAB_STORE_PASSWORD} or the MMWRTAB_STORE_PASSWORD variable"}
	}
	results := []DiagnosticResult{result}

	// Optionally test database connectivity
	if opts.Verbose {
		results = append(results, checkStoreConnectivity(ctx, s))
	}
	return results
}

func checkStoreConnectivity(ctx context.Context, cfg config.StoreConfig) DiagnosticResult {
	result := DiagnosticResult{Check: "Store Connectivity"}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := store.Open(ctx, cfg)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check host, port and credentials",
			"Verify the database exists",
		}
		return result
	}
	_ = db.Close()

	result.Status = "ok"
	result.Message = "Connected"
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== mmwrtab Configuration Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before parsing.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nConfiguration is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nConfiguration looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		// Webhooks are optional, just note they're not configured
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}

		// Check URL
		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		switch wh.Trigger {
		case config.WebhookTriggerOnFailures, config.WebhookTriggerAlways, config.WebhookTriggerNever:
		default:
			issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_failures, always, or never)", wh.Trigger))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	// Optionally test webhook connectivity
	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}

			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// Just do a HEAD request to check if the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

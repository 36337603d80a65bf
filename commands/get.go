package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mauzo/sheets-gateway/config"
	"github.com/mauzo/sheets-gateway/log"
	"github.com/mauzo/sheets-gateway/sheets"
)

type Get struct {
	credentials string
	url         string
	area        string
	file        string
	format      string
}

// NewGetCmd returns the 'get' command, which downloads a spreadsheet range to a local TSV or JSON file.
func NewGetCmd(options *Options) *cobra.Command {
	get := Get{
		format: "tsv",
	}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Downloads a Google Sheets worksheet range to a local file",
		Long: `Downloads a Google Sheets worksheet range to a local TSV, JSON or Excel file. Options not given on the
command line default to the GOOGLE_CREDENTIALS, SHEET_ID and SHEET_RANGE environment variables.`,
		Example: `  sheets-gateway --debug get --credentials "service-account.json" \
                           --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \
                           --range "Mauzo!A1:J" \
                           --file "mauzo.tsv"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := get.validate(os.Getenv); err != nil {
				return err
			}

			reader := sheets.NewClient(get.credentials)

			return get.execute(cmd.Context(), reader)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&get.credentials, "credentials", get.credentials, "Service account credentials file. Defaults to GOOGLE_CREDENTIALS or 'service-account.json'")
	flags.StringVar(&get.url, "url", get.url, "Spreadsheet URL or ID. Defaults to SHEET_ID")
	flags.StringVar(&get.area, "range", get.area, "Spreadsheet range e.g. 'Mauzo!A1:J'. Defaults to SHEET_RANGE or 'Mauzo!A1:J'")
	flags.StringVar(&get.file, "file", get.file, "Output file. Defaults to '<yyyy-mm-dd>T<HHmmss>.<format>'")
	flags.StringVar(&get.format, "format", get.format, "Output file format (tsv, json or xlsx)")

	return cmd
}

// validate fills in unset options from the environment and checks the result.
func (cmd *Get) validate(getenv func(string) string) error {
	if strings.TrimSpace(cmd.credentials) == "" {
		cmd.credentials = getenv("GOOGLE_CREDENTIALS")
	}

	if strings.TrimSpace(cmd.credentials) == "" {
		cmd.credentials = config.DEFAULT_CREDENTIALS
	}

	if strings.TrimSpace(cmd.url) == "" {
		cmd.url = getenv("SHEET_ID")
	}

	if strings.TrimSpace(cmd.area) == "" {
		cmd.area = getenv("SHEET_RANGE")
	}

	if strings.TrimSpace(cmd.area) == "" {
		cmd.area = config.DEFAULT_RANGE
	}

	if strings.TrimSpace(cmd.url) == "" {
		return fmt.Errorf("--url is a required option")
	}

	spreadsheet, err := config.SpreadsheetID(cmd.url)
	if err != nil {
		return err
	}

	cmd.url = spreadsheet

	if _, err := sheets.ParseRange(cmd.area); err != nil {
		return err
	}

	switch cmd.format = strings.ToLower(strings.TrimSpace(cmd.format)); cmd.format {
	case "tsv", "json", "xlsx":
	default:
		return fmt.Errorf("invalid --format '%v' - expected 'tsv', 'json' or 'xlsx'", cmd.format)
	}

	if strings.TrimSpace(cmd.file) == "" {
		cmd.file = time.Now().Format("2006-01-02T150405") + "." + cmd.format
	}

	return nil
}

func (cmd *Get) execute(ctx context.Context, reader sheets.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log.Debugf("spreadsheet:%s  range:%s", cmd.url, cmd.area)

	rows, err := reader.Values(ctx, cmd.url, cmd.area)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("no data in spreadsheet/range")
	}

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sheets-gateway-*")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := write(tmp, cmd.area, rows, cmd.format); err != nil {
		return fmt.Errorf("error creating %v file (%v)", strings.ToUpper(cmd.format), err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	log.Infof("Retrieved %v rows to file %s", len(rows), cmd.file)

	return nil
}

func write(f io.Writer, area string, rows [][]any, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(f)
		encoder.SetIndent("", "  ")

		return encoder.Encode(struct {
			Data [][]any `json:"data"`
		}{
			Data: rows,
		})

	case "xlsx":
		r, err := sheets.ParseRange(area)
		if err != nil {
			return err
		}

		return sheets.MakeXLSX(f, r.Sheet, rows)

	default:
		return sheets.MakeTSV(f, rows)
	}
}

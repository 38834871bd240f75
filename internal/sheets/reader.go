package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ValuesSource returns the cell values of a spreadsheet range.
type ValuesSource interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

// Reader reads import tables from one spreadsheet.
type Reader struct {
	source ValuesSource
	logger *slog.Logger
	config Config
}

// NewReader creates a reader backed by the Google Sheets API.
func NewReader(ctx context.Context, config Config, logger *slog.Logger) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewReaderWithSource(apiSource{srv: srv}, config, logger), nil
}

// NewReaderWithSource creates a reader over any values source.
func NewReaderWithSource(source ValuesSource, config Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{source: source, config: config, logger: logger}
}

// ReadTable fetches readRange, for example "Poliçeler!A1:Z", and returns it
// as a table. Line numbers assume the range starts at the first row.
func (r *Reader) ReadTable(ctx context.Context, readRange string) (*tabular.Table, error) {
	r.logger.Info("Reading spreadsheet range",
		"spreadsheet_id", r.config.SpreadsheetID,
		"range", readRange)

	retryOpts := service.RetryOptions{
		MaxAttempts:  r.config.RetryAttempts,
		InitialDelay: r.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var values [][]any
	err := common.WithRetry(ctx, func() error {
		var err error
		values, err = r.source.Values(ctx, r.config.SpreadsheetID, readRange)
		return classify(err)
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", readRange, err)
	}

	records := make([][]string, len(values))
	for i, row := range values {
		records[i] = make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				records[i][j] = fmt.Sprint(cell)
			}
		}
	}

	table, err := tabular.FromRecords("sheets:"+readRange, records)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Spreadsheet range read", "range", readRange, "rows", len(table.Rows))
	return table, nil
}

// classify marks API throttling and server errors as retryable.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return common.Transient(err)
	}
	return err
}

type apiSource struct {
	srv *sheets.Service
}

func (a apiSource) Values(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	resp, err := a.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

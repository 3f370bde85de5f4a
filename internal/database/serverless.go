package database

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Headers understood by the SQL-over-HTTP endpoint.
const (
	headerConnectionString = "Neon-Connection-String"
	headerRawTextOutput    = "Neon-Raw-Text-Output"
	headerArrayMode        = "Neon-Array-Mode"
)

// PostgreSQL type OIDs the serverless handle decodes natively.
const (
	oidBool        = 16
	oidInt8        = 20
	oidInt2        = 21
	oidInt4        = 23
	oidJSON        = 114
	oidFloat4      = 700
	oidFloat8      = 701
	oidDate        = 1082
	oidTimestamp   = 1114
	oidTimestamptz = 1184
	oidJSONB       = 3802
)

// ServerlessHandle sends every statement as an independent HTTPS request.
// It holds no database connection between queries.
type ServerlessHandle struct {
	connString string
	endpoint   string
	client     *http.Client
	logger     *slog.Logger
	closed     atomic.Bool
}

type sqlRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

type sqlField struct {
	Name       string `json:"name"`
	DataTypeID int    `json:"dataTypeID"`
}

type sqlResponse struct {
	Command  string               `json:"command"`
	RowCount *int64               `json:"rowCount"`
	Fields   []sqlField           `json:"fields"`
	Rows     []map[string]*string `json:"rows"`
}

// newServerless builds the HTTP handle. It performs no network I/O.
func newServerless(connString string, u *url.URL, opts HTTPOptions, logger *slog.Logger) (*ServerlessHandle, error) {
	// The endpoint forwards the string to the database, so reject here what
	// the pooled strategy would reject.
	if _, err := pgconn.ParseConfig(connString); err != nil {
		return nil, &ConfigurationError{Field: "database.url", Reason: "malformed postgres connection string", Err: err}
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		if u.Hostname() == "" {
			return nil, &ConfigurationError{Field: "database.url", Reason: "serverless strategy requires a host"}
		}
		endpoint = (&url.URL{Scheme: "https", Host: u.Hostname(), Path: "/sql"}).String()
	} else if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, &ConfigurationError{Field: "database.http.endpoint", Reason: "invalid endpoint", Err: err}
	}

	return &ServerlessHandle{
		connString: connString,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}, nil
}

// Endpoint returns the URL statements are posted to.
func (h *ServerlessHandle) Endpoint() string { return h.endpoint }

// Query implements DB.
func (h *ServerlessHandle) Query(ctx context.Context, q Descriptor) ([]Row, error) {
	_, out, err := h.QueryColumns(ctx, q)
	return out, err
}

// QueryColumns implements ColumnQuerier. Columns come from the response's
// field list, which the endpoint sends in select-list order.
func (h *ServerlessHandle) QueryColumns(ctx context.Context, q Descriptor) ([]string, []Row, error) {
	resp, err := h.do(ctx, "query", q)
	if err != nil {
		return nil, nil, err
	}

	cols := make([]string, len(resp.Fields))
	types := make(map[string]int, len(resp.Fields))
	for i, f := range resp.Fields {
		cols[i] = f.Name
		types[f.Name] = f.DataTypeID
	}

	out := make([]Row, 0, len(resp.Rows))
	for _, raw := range resp.Rows {
		row := make(Row, len(raw))
		for col, v := range raw {
			decoded, err := decodeText(types[col], v)
			if err != nil {
				return nil, nil, queryErr("query", StrategyServerless, fmt.Errorf("column %s: %w", col, err))
			}
			row[col] = decoded
		}
		out = append(out, row)
	}
	return cols, out, nil
}

// Exec implements DB.
func (h *ServerlessHandle) Exec(ctx context.Context, q Descriptor) (Result, error) {
	resp, err := h.do(ctx, "exec", q)
	if err != nil {
		return Result{}, err
	}
	if resp.RowCount == nil {
		return Result{}, nil
	}
	return Result{RowsAffected: *resp.RowCount}, nil
}

// Ping implements DB.
func (h *ServerlessHandle) Ping(ctx context.Context) error {
	_, err := h.do(ctx, "ping", Raw("SELECT 1"))
	return err
}

// Strategy implements DB.
func (h *ServerlessHandle) Strategy() Strategy { return StrategyServerless }

// Dialect implements DB.
func (h *ServerlessHandle) Dialect() Dialect { return Postgres }

// Close implements DB.
func (h *ServerlessHandle) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	h.client.CloseIdleConnections()
	return nil
}

// sessionDB implements migrator. Schema changes need a real session, so a
// direct connection is opened through the pgx database/sql driver.
func (h *ServerlessHandle) sessionDB(ctx context.Context) (*sql.DB, func() error, error) {
	db, err := sql.Open("pgx", h.connString)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, db.Close, nil
}

func (h *ServerlessHandle) do(ctx context.Context, op string, q Descriptor) (*sqlResponse, error) {
	if h.closed.Load() {
		return nil, queryErr(op, StrategyServerless, ErrClosed)
	}

	query, args, err := q.Build(Postgres)
	if err != nil {
		return nil, queryErr("build", StrategyServerless, err)
	}

	params := make([]any, len(args))
	for i, a := range args {
		params[i] = encodeParam(a)
	}

	body, err := json.Marshal(sqlRequest{Query: query, Params: params})
	if err != nil {
		return nil, queryErr(op, StrategyServerless, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, queryErr(op, StrategyServerless, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerConnectionString, h.connString)
	req.Header.Set(headerRawTextOutput, "true")
	req.Header.Set(headerArrayMode, "false")

	h.logger.Debug(op, "sql", query, "args", len(args))
	res, err := h.client.Do(req)
	if err != nil {
		return nil, queryErr(op, StrategyServerless, err)
	}
	defer func() { _ = res.Body.Close() }()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, queryErr(op, StrategyServerless, err)
	}

	if res.StatusCode != http.StatusOK {
		httpErr := &HTTPError{StatusCode: res.StatusCode}
		if jsonErr := json.Unmarshal(payload, httpErr); jsonErr != nil || httpErr.Message == "" {
			httpErr.Message = http.StatusText(res.StatusCode)
		}
		return nil, queryErr(op, StrategyServerless, httpErr)
	}

	var out sqlResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, queryErr(op, StrategyServerless, fmt.Errorf("decode response: %w", err))
	}
	return &out, nil
}

// encodeParam converts a bind argument into its JSON wire form.
func encodeParam(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return `\x` + hex.EncodeToString(val)
	case bool:
		return strconv.FormatBool(val)
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return fmt.Sprint(val)
		}
		return encodeParam(dv)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return encodeParam(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

// decodeText turns a raw text value into a Go value based on its type OID.
func decodeText(oid int, v *string) (any, error) {
	if v == nil {
		return nil, nil
	}
	s := *v
	switch oid {
	case oidBool:
		return s == "t" || s == "true", nil
	case oidInt2, oidInt4, oidInt8:
		return strconv.ParseInt(s, 10, 64)
	case oidFloat4, oidFloat8:
		return strconv.ParseFloat(s, 64)
	case oidDate:
		return time.Parse(time.DateOnly, s)
	case oidTimestamp, oidTimestamptz:
		var lastErr error
		for _, layout := range timestampLayouts {
			t, err := time.Parse(layout, s)
			if err == nil {
				return t, nil
			}
			lastErr = err
		}
		return nil, lastErr
	case oidJSON, oidJSONB:
		return json.RawMessage(s), nil
	default:
		// numeric, text, uuid and anything else stay as text.
		return s, nil
	}
}

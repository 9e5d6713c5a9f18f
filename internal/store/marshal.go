package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/value"
)

// Domain prefixes for content hashes.
const (
	DomainQuery = "lcq/query/v1"
	DomainRows  = "lcq/rows/v1"
)

// StatusOK marks a run that produced rows. Failed runs store their
// engine.RuntimeErrorCode instead.
const StatusOK = engine.StatusOK

// RunRecord is one stored query run.
type RunRecord struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"` // assigned by WriteRun
	QueryName string `json:"query_name"`
	Query     string `json:"query"` // JSON query definition
	QueryHash string `json:"query_hash"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Rows      string `json:"rows"` // canonical JSON array
	RowsHash  string `json:"rows_hash"`
	Visited   int    `json:"visited"`
	Accepted  int    `json:"accepted"`
	Truncated bool   `json:"truncated,omitempty"`
	ElapsedNS int64  `json:"elapsed_ns"`
}

// OK reports whether the run produced rows.
func (r RunRecord) OK() bool {
	return r.Status == StatusOK
}

// DecodeQuery parses the stored query definition.
func (r RunRecord) DecodeQuery() (*query.Query, error) {
	q, err := query.Parse([]byte(r.Query), query.FormatJSON, "")
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return q, nil
}

// NewRunRecord builds the record for a run of q. Exactly one of res and
// runErr is expected to be set; a runErr must carry an
// *engine.RuntimeError so the run ID and code are known.
func NewRunRecord(q *query.Query, res *engine.Result, runErr error) (RunRecord, error) {
	queryJSON, err := marshalQuery(q)
	if err != nil {
		return RunRecord{}, err
	}

	rec := RunRecord{
		QueryName: q.Name,
		Query:     queryJSON,
		QueryHash: hashWithDomain(DomainQuery, []byte(queryJSON)),
	}

	if runErr != nil {
		var rerr *engine.RuntimeError
		if !errors.As(runErr, &rerr) {
			return RunRecord{}, fmt.Errorf("record run: %w", runErr)
		}
		rec.ID = rerr.RunID
		rec.Status = string(rerr.Code)
		rec.Error = runErr.Error()
		rec.Rows = "[]"
		rec.RowsHash = hashWithDomain(DomainRows, []byte(rec.Rows))
		return rec, nil
	}
	if res == nil {
		return RunRecord{}, errors.New("record run: no result and no error")
	}

	rows, err := value.MarshalCanonicalRows(res.Rows)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal rows: %w", err)
	}

	rec.ID = res.RunID
	rec.Status = StatusOK
	rec.Rows = string(rows)
	rec.RowsHash = hashWithDomain(DomainRows, rows)
	rec.Visited = res.Visited
	rec.Accepted = res.Accepted
	rec.Truncated = res.Truncated
	rec.ElapsedNS = res.Elapsed.Nanoseconds()
	return rec, nil
}

// marshalQuery encodes q as JSON without HTML escaping. Relative database
// paths are made absolute so a replay from another directory reads the
// same file.
func marshalQuery(q *query.Query) (string, error) {
	cp := *q
	cp.From = make([]query.Source, len(q.From))
	for i, src := range q.From {
		if src.SQL != nil {
			sql := *src.SQL
			if sql.DB != ":memory:" && !strings.HasPrefix(sql.DB, "file:") && !filepath.IsAbs(sql.DB) {
				abs, err := filepath.Abs(sql.DB)
				if err != nil {
					return "", fmt.Errorf("marshal query: %w", err)
				}
				sql.DB = abs
			}
			src.SQL = &sql
		}
		cp.From[i] = src
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // where expressions use < and &&
	if err := enc.Encode(cp); err != nil {
		return "", fmt.Errorf("marshal query: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// hashWithDomain computes SHA-256(domain + 0x00 + data), hex encoded.
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

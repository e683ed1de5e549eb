package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"spportal/domain/portal"
)

// Helper functions for query parsing and JSON responses.

// parseLimit reads a positive integer query parameter, falling back to def when absent.
func parseLimit(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

// parseBool reads a boolean query parameter; anything unrecognised is false.
func parseBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

// parseFilter builds a filter from repeated where=Field,Op[,Type,Value] terms and an
// optional raw caml parameter. All parts are joined with And.
func parseFilter(r *http.Request) (portal.FilterExpression, error) {
	q := r.URL.Query()
	terms := make([]portal.FilterExpression, 0, len(q["where"])+1)

	for _, raw := range q["where"] {
		parts := strings.SplitN(raw, ",", 4)
		if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
			return portal.FilterExpression{}, fmt.Errorf("where %q: want Field,Op[,Type,Value]", raw)
		}
		field := strings.TrimSpace(parts[0])
		op, err := portal.ParseOperator(strings.TrimSpace(parts[1]))
		if err != nil {
			return portal.FilterExpression{}, err
		}
		if op.IsNullCheck() {
			terms = append(terms, portal.Compare(op, field, "", nil))
			continue
		}
		if len(parts) < 4 {
			return portal.FilterExpression{}, fmt.Errorf("where %q: operator %s needs a type and a value", raw, op)
		}
		vt, err := portal.ParseValueType(strings.TrimSpace(parts[2]))
		if err != nil {
			return portal.FilterExpression{}, err
		}
		terms = append(terms, portal.Compare(op, field, vt, parts[3]))
	}

	if caml := q.Get("caml"); caml != "" {
		terms = append(terms, portal.RawFilter(caml))
	}
	return portal.And(terms...), nil
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  int    `json:"code,omitempty"`
}

// writeError maps portal failures to 502 and everything else to status.
func writeError(w http.ResponseWriter, status int, err error) {
	var pe *portal.Error
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: err.Error(),
			Kind:  pe.Kind.String(),
			Code:  pe.Code,
		})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

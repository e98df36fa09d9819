// Package http provides the JSON API over transactions, reports, budget and
// settings.
//
// This file implements request parsing. Bodies may be JSON or form-encoded;
// both are read through RequestBodyParser so handlers see one key/value view.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"duitku/internal/core"
	"duitku/internal/stats"
)

const (
	maxBodyBytes     = 1 << 16 // 64KB
	defaultListLimit = 50
	maxListLimit     = 500
)

// badRequestError marks input that could not be parsed at all.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

// RequestBodyParser reads a request body once and exposes it as key/value
// pairs regardless of whether it was JSON or form-encoded.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = badRequest("request body too large")
	}
	return p
}

// Parse decodes the body as JSON when it looks like a JSON object and as a
// form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(trimmed, &p.jsonData); err != nil {
			p.err = badRequest("invalid JSON body: %v", err)
		}
		return p.err
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		p.err = badRequest("invalid form body: %v", err)
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns the sanitized value of key, or "" when absent or null.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent with a non-null value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		return ok && v != nil
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Bool reads a boolean field, accepting JSON booleans and "true"/"1"/"on".
func (p *RequestBodyParser) Bool(key string) (bool, error) {
	if p.jsonData != nil {
		if b, ok := p.jsonData[key].(bool); ok {
			return b, nil
		}
	}
	switch strings.ToLower(p.Get(key)) {
	case "true", "1", "on", "yes":
		return true, nil
	case "false", "0", "off", "no":
		return false, nil
	}
	return false, badRequest("%s must be a boolean", key)
}

// parseTransaction builds a transaction from the body. Domain validation is
// left to the store; only unparseable values are rejected here.
func parseTransaction(p *RequestBodyParser, now time.Time, loc *time.Location) (core.Transaction, error) {
	if err := p.Parse(); err != nil {
		return core.Transaction{}, err
	}

	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}

	kind := core.Expense
	if p.Has("kind") {
		if kind, err = core.ParseKind(p.Get("kind")); err != nil {
			return core.Transaction{}, err
		}
	}

	ts, err := parseTimestamp(p, now, loc)
	if err != nil {
		return core.Transaction{}, err
	}

	category := p.Get("category")
	if category == "" && kind == core.Expense {
		category = core.DefaultCategory
	}

	return core.Transaction{
		Amount:    amount,
		Kind:      kind,
		Category:  category,
		Timestamp: ts,
		Note:      p.Get("note"),
	}, nil
}

// parseTimestamp takes "timestamp" (RFC 3339) if present, then "date" (any
// loose date format, combined with the current time of day), then now.
func parseTimestamp(p *RequestBodyParser, now time.Time, loc *time.Location) (time.Time, error) {
	if v := p.Get("timestamp"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, badRequest("timestamp must be RFC 3339")
		}
		return ts, nil
	}
	if v := p.Get("date"); v != "" {
		day, err := core.ParseLooseDate(v, loc)
		if err != nil {
			return time.Time{}, err
		}
		now = now.In(loc)
		return time.Date(day.Year(), day.Month(), day.Day(),
			now.Hour(), now.Minute(), now.Second(), 0, loc), nil
	}
	return now, nil
}

// parseCandidate reads an extraction result. Fields that fail to parse are
// treated as missing.
func parseCandidate(p *RequestBodyParser, loc *time.Location) (core.Candidate, string, error) {
	if err := p.Parse(); err != nil {
		return core.Candidate{}, "", err
	}

	c := core.Candidate{Merchant: p.Get("merchant")}
	if m, err := core.ParseMoney(p.Get("amount")); err == nil {
		c.Amount = &m
	}
	if d, err := core.ParseLooseDate(p.Get("date"), loc); err == nil {
		c.Date = &d
	}
	return c, p.Get("category"), nil
}

// parseStatsQuery reads period (default week) and date (default today).
func parseStatsQuery(q url.Values, now time.Time, loc *time.Location) (stats.Period, time.Time, error) {
	period := stats.Week
	if v := strings.TrimSpace(q.Get("period")); v != "" {
		p, err := stats.ParsePeriod(v)
		if err != nil {
			return "", time.Time{}, err
		}
		period = p
	}

	anchor := now.In(loc)
	if v := strings.TrimSpace(q.Get("date")); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return "", time.Time{}, badRequest("date must be YYYY-MM-DD")
		}
		anchor = d
	}
	return period, anchor, nil
}

func parseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, badRequest("limit must be a positive integer")
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

// settingsPatch carries the fields of a settings update; nil means keep.
type settingsPatch struct {
	UserName      *string     `json:"user_name"`
	DailyLimit    *core.Money `json:"daily_limit"`
	Theme         *string     `json:"theme"`
	DailyReminder *bool       `json:"daily_reminder"`
}

func parseSettingsPatch(r *http.Request) (settingsPatch, error) {
	var patch settingsPatch
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return patch, badRequest("empty body")
		}
		return patch, badRequest("invalid JSON body: %v", err)
	}
	return patch, nil
}

func (p settingsPatch) apply(s core.Settings) core.Settings {
	if p.UserName != nil {
		s.UserName = strings.TrimSpace(*p.UserName)
	}
	if p.DailyLimit != nil {
		s.DailyLimit = *p.DailyLimit
	}
	if p.Theme != nil {
		s.Theme = strings.ToLower(strings.TrimSpace(*p.Theme))
	}
	if p.DailyReminder != nil {
		s.DailyReminder = *p.DailyReminder
	}
	return s
}

// Package options parses the key/value option tables handed to the device,
// the input reader and the encoder.
package options

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/vpetranscode/pkg/ports"
)

var (
	// ErrMalformed is returned for an option string that is not key=value.
	ErrMalformed = errors.New("options: malformed option")

	// ErrUnknownOption is returned for a key no option table understands.
	ErrUnknownOption = errors.New("options: unknown option")

	// ErrInvalidSize is returned for a size that is not WxH with positive even dimensions.
	ErrInvalidSize = errors.New("options: invalid video size")
)

// Option is a single key/value pair.
type Option struct {
	Key   string
	Value string
}

// Table is an ordered list of options. Later entries win on duplicate keys.
type Table []Option

// ParseTable parses "key=value" strings into a Table.
func ParseTable(pairs []string) (Table, error) {
	t := make(Table, 0, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformed, p)
		}
		t = append(t, Option{Key: k, Value: v})
	}
	return t, nil
}

// Get returns the last value stored under key.
func (t Table) Get(key string) (string, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Key == key {
			return t[i].Value, true
		}
	}
	return "", false
}

// Set replaces key's value, appending it when absent.
func (t Table) Set(key, value string) Table {
	for i := range t {
		if t[i].Key == key {
			t[i].Value = value
			return t
		}
	}
	return append(t, Option{Key: key, Value: value})
}

// Merge returns a copy of t with every option of o applied on top.
func (t Table) Merge(o Table) Table {
	out := append(Table(nil), t...)
	for _, opt := range o {
		out = out.Set(opt.Key, opt.Value)
	}
	return out
}

// Strings returns the table as key=value strings.
func (t Table) Strings() []string {
	out := make([]string, len(t))
	for i, o := range t {
		out[i] = o.Key + "=" + o.Value
	}
	return out
}

// ParseSize parses "WxH".
func ParseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	width, err = strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	height, err = strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return width, height, nil
}

// ParseRational parses "num/den" or a plain integer.
func ParseRational(s string) (ports.Rational, error) {
	ns, ds, ok := strings.Cut(s, "/")
	num, err := strconv.Atoi(ns)
	if err != nil {
		return ports.Rational{}, fmt.Errorf("%w: frame rate %q", ErrMalformed, s)
	}
	den := 1
	if ok {
		den, err = strconv.Atoi(ds)
		if err != nil {
			return ports.Rational{}, fmt.Errorf("%w: frame rate %q", ErrMalformed, s)
		}
	}
	if num <= 0 || den <= 0 {
		return ports.Rational{}, fmt.Errorf("%w: frame rate %q", ErrMalformed, s)
	}
	return ports.Rational{Num: num, Den: den}, nil
}

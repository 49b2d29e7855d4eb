// Package config provides configuration loading and validation for quickfire.
package config

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// settings is a decoded config file as returned by viper.AllSettings.
// Viper lowercases every key and decodes nested tables as
// map[string]interface{}. Scalars arrive as string, bool, int, int64 or
// float64 depending on the file format (JSON numbers are always float64).
type settings map[string]interface{}

// lookup returns the first of keys present in s.
func (s settings) lookup(keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := s[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// section returns the nested table stored under key, if any.
func (s settings) section(key string) (settings, error) {
	v, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a table, got %T", key, v)
	}
	return settings(m), nil
}

func (s settings) setString(dst *string, keys ...string) error {
	v, ok := s.lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		*dst = t
	case bool, int, int64, float64:
		*dst = fmt.Sprint(t)
	default:
		return fmt.Errorf("%s: expected a string, got %T", keys[0], v)
	}
	return nil
}

func (s settings) setInt(dst *int, keys ...string) error {
	v, ok := s.lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case int:
		*dst = t
	case int64:
		*dst = int(t)
	case float64:
		if t != math.Trunc(t) {
			return fmt.Errorf("%s: expected a whole number, got %v", keys[0], t)
		}
		*dst = int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return fmt.Errorf("%s: %w", keys[0], err)
		}
		*dst = n
	default:
		return fmt.Errorf("%s: expected a number, got %T", keys[0], v)
	}
	return nil
}

func (s settings) setFloat(dst *float64, keys ...string) error {
	v, ok := s.lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		*dst = t
	case int:
		*dst = float64(t)
	case int64:
		*dst = float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", keys[0], err)
		}
		*dst = f
	default:
		return fmt.Errorf("%s: expected a number, got %T", keys[0], v)
	}
	return nil
}

func (s settings) setBool(dst *bool, keys ...string) error {
	v, ok := s.lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case bool:
		*dst = t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return fmt.Errorf("%s: %w", keys[0], err)
		}
		*dst = b
	default:
		return fmt.Errorf("%s: expected true or false, got %T", keys[0], v)
	}
	return nil
}

// setDuration accepts Go duration strings ("1.5s") or a bare number of seconds.
func (s settings) setDuration(dst *time.Duration, keys ...string) error {
	v, ok := s.lookup(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(t))
		if err != nil {
			return fmt.Errorf("%s: %w", keys[0], err)
		}
		*dst = d
	case int:
		*dst = time.Duration(t) * time.Second
	case int64:
		*dst = time.Duration(t) * time.Second
	case float64:
		*dst = time.Duration(t * float64(time.Second))
	default:
		return fmt.Errorf("%s: expected a duration, got %T", keys[0], v)
	}
	return nil
}

// mergeHeaders copies the headers table into dst under canonical keys.
func (s settings) mergeHeaders(dst map[string]string, key string) error {
	table, err := s.section(key)
	if err != nil || table == nil {
		return err
	}
	for name := range table {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s: header name cannot be empty", key)
		}
		var value string
		if err := table.setString(&value, name); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		dst[http.CanonicalHeaderKey(strings.TrimSpace(name))] = value
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// envLookup matches os.LookupEnv so tests can supply their own environment
type envLookup func(key string) (string, bool)

// overrideFromEnv replaces YAML values with any `env`-tagged variable that is set
func overrideFromEnv(cfg *Config) error {
	return applyEnvOverrides(reflect.ValueOf(cfg), os.LookupEnv)
}

// applyEnvOverrides visits every leaf of a (possibly nested) struct. All
// malformed variables are reported together, not just the first.
func applyEnvOverrides(val reflect.Value, lookup envLookup) error {
	val = reflect.Indirect(val)
	if val.Kind() != reflect.Struct {
		return nil
	}

	var errs []error
	for i := 0; i < val.NumField(); i++ {
		field, meta := val.Field(i), val.Type().Field(i)

		if field.Kind() == reflect.Struct {
			errs = append(errs, applyEnvOverrides(field.Addr(), lookup))
			continue
		}

		key, ok := meta.Tag.Lookup("env")
		if !ok || key == "" {
			continue
		}
		raw, set := lookup(key)
		if !set {
			continue
		}
		if err := assignEnvValue(field, strings.TrimSpace(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", key, meta.Name, err))
		}
	}
	return errors.Join(errs...)
}

func assignEnvValue(field reflect.Value, raw string) error {
	if !field.CanSet() {
		return errors.New("field is not settable")
	}

	switch {
	case field.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.String:
		field.SetString(raw)
	case field.CanInt():
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("want an integer: %w", err)
		}
		field.SetInt(n)
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("want true or false: %w", err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%s fields cannot come from the environment", field.Kind())
	}
	return nil
}

package config

import (
	"encoding"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// loadFromEnv overlays SLAYERBOOST_* environment variables onto cfg.
// Only fields with an `env` tag are read; unset or empty variables are skipped.
func loadFromEnv(cfg *Config) error {
	return overlayEnv(reflect.ValueOf(cfg).Elem(), "")
}

func overlayEnv(val reflect.Value, prefix string) error {
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", val.Kind())
	}
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field, sf := val.Field(i), typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("env")

		// core.Master, core.RGBA and friends parse themselves
		if tag != "" {
			if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
				if err := applyEnv(envVar(prefix, tag), sf.Name, func(raw string) error {
					return u.UnmarshalText([]byte(raw))
				}); err != nil {
					return err
				}
				continue
			}
		}

		if field.Kind() == reflect.Struct {
			if err := overlayEnv(field, prefix); err != nil {
				return err
			}
			continue
		}
		if tag == "" {
			continue
		}
		if err := applyEnv(envVar(prefix, tag), sf.Name, func(raw string) error {
			return setFromString(field, raw)
		}); err != nil {
			return err
		}
	}
	return nil
}

// applyEnv calls set with the variable's value when it is non-empty.
func applyEnv(name, field string, set func(string) error) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	if err := set(raw); err != nil {
		return fmt.Errorf("failed to set field %s from env var %s: %w", field, name, err)
	}
	return nil
}

func envVar(prefix, tag string) string {
	if prefix == "" {
		return tag
	}
	return prefix + "_" + tag
}

// setFromString parses raw into field according to its kind.
// Slices are comma separated; maps use "k=v,k2=v2".
func setFromString(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration value: %s", raw)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", raw)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", raw)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float value: %s", raw)
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(raw, ",")
		out := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, p := range parts {
			out = reflect.Append(out, reflect.ValueOf(strings.TrimSpace(p)).Convert(field.Type().Elem()))
		}
		field.Set(out)
	case reflect.Map:
		t := field.Type()
		if t.Key().Kind() != reflect.String || t.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported map type: %s -> %s", t.Key().Kind(), t.Elem().Kind())
		}
		out := reflect.MakeMapWithSize(t, 0)
		for _, pair := range strings.Split(raw, ",") {
			k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok {
				return fmt.Errorf("invalid map entry format: %s", pair)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), reflect.ValueOf(v).Convert(t.Elem()))
		}
		field.Set(out)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

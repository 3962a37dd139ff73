/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/ecgprobe/pkg/logger"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")

	errUnsupportedFieldType = errors.New("unsupported field type")
)

//nolint:gochecknoglobals // compared against field types
var durationType = reflect.TypeOf(time.Duration(0))

// EnvConfigLoader loads configuration from environment variables named
// after the json tags of dst. Nested structs are joined with underscores:
// ECGPROBE_EVENTS_NATS_URL maps to cfg.Events.NATSURL.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader. A complete JSON document in <prefix>CONFIG_JSON
// takes precedence over individual variables. A malformed variable fails the
// load and names the variable.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	if jsonConfig := os.Getenv(e.prefix + "CONFIG_JSON"); jsonConfig != "" {
		if err := json.Unmarshal([]byte(jsonConfig), dst); err != nil {
			return fmt.Errorf("failed to unmarshal %sCONFIG_JSON: %w", e.prefix, err)
		}

		e.logger.Debug().Msg("Loaded configuration from CONFIG_JSON environment variable")

		return nil
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	return e.loadStruct(v, e.prefix)
}

func (e *EnvConfigLoader) loadStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		envName := prefix + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))

		if err := e.setField(field, envName); err != nil {
			return err
		}
	}

	return nil
}

func (e *EnvConfigLoader) setField(field reflect.Value, envName string) error {
	switch {
	case field.Kind() == reflect.Struct:
		return e.loadStruct(field, envName+"_")
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}

		return e.loadStruct(field.Elem(), envName+"_")
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok || envValue == "" {
		return nil
	}

	if err := setFieldByKind(field, envValue); err != nil {
		return fmt.Errorf("%s: %w", envName, err)
	}

	e.logger.Debug().Str("env", envName).Msg("Loaded value from environment variable")

	return nil
}

func setFieldByKind(field reflect.Value, envValue string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(envValue)
		if err != nil {
			return fmt.Errorf("invalid duration value: %w", err)
		}

		field.SetInt(int64(d))

		return nil
	}

	//nolint:exhaustive // remaining kinds fall through to JSON
	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)
	case reflect.Bool:
		b, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %w", err)
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(envValue, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}

		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(envValue, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %w", err)
		}

		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(envValue, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float value: %w", err)
		}

		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			values := strings.Split(envValue, ",")
			for i := range values {
				values[i] = strings.TrimSpace(values[i])
			}

			field.Set(reflect.ValueOf(values).Convert(field.Type()))

			return nil
		}

		return unmarshalField(field, envValue)
	default:
		return unmarshalField(field, envValue)
	}

	return nil
}

func unmarshalField(field reflect.Value, envValue string) error {
	if err := json.Unmarshal([]byte(envValue), field.Addr().Interface()); err != nil {
		return fmt.Errorf("%w %s: %w", errUnsupportedFieldType, field.Kind(), err)
	}

	return nil
}

package config

import (
	stderrors "errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/llmaid/errors"
	"github.com/kbukum/llmaid/util"
)

// layers is the input of one resolution.
type layers struct {
	call     Overrides
	instance Overrides
	env      EnvReader
	defaults Defaults
}

// resolver resolves a single field of Settings.
type resolver struct {
	field string
	env   string
	apply func(l *layers, s *Settings) error
}

// resolvers is evaluated in order; each entry consults call, instance, env
// and default layers for its own field only.
var resolvers = []resolver{
	stringField(FieldBaseURL, EnvBaseURL,
		func(o Overrides) *string { return o.BaseURL },
		nil,
		func(s *Settings, v string) { s.BaseURL = v }),
	stringField(FieldSecret, EnvSecret,
		func(o Overrides) *string { return o.Secret },
		nil,
		func(s *Settings, v string) { s.Secret = v }),
	stringField(FieldModel, EnvModel,
		func(o Overrides) *string { return o.Model },
		nil,
		func(s *Settings, v string) { s.Model = v }),
	stringField(FieldPromptDir, EnvPromptDir,
		func(o Overrides) *string { return o.PromptDir },
		func(d Defaults) string { return d.PromptDir },
		func(s *Settings, v string) { s.PromptDir = v }),
	valueField(FieldStrictTemplate, EnvStrictTemplate,
		func(o Overrides) *bool { return o.StrictTemplate },
		func(d Defaults) *bool { return util.Ptr(d.StrictTemplate) },
		util.ParseBool,
		func(s *Settings, v *bool) { s.StrictTemplate = util.Deref(v) }),
	valueField(FieldTemperature, EnvTemperature,
		func(o Overrides) *float64 { return o.Temperature },
		func(d Defaults) *float64 { return d.Temperature },
		parseFloat,
		func(s *Settings, v *float64) { s.Temperature = v }),
	valueField(FieldMaxTokens, EnvMaxTokens,
		func(o Overrides) *int { return o.MaxTokens },
		func(d Defaults) *int { return d.MaxTokens },
		strconv.Atoi,
		func(s *Settings, v *int) { s.MaxTokens = v }),
	valueField(FieldContextLength, EnvContextLength,
		func(o Overrides) *int { return o.ContextLength },
		func(d Defaults) *int { return d.ContextLength },
		strconv.Atoi,
		func(s *Settings, v *int) { s.ContextLength = v }),
	valueField(FieldTopP, EnvTopP,
		func(o Overrides) *float64 { return o.TopP },
		func(d Defaults) *float64 { return d.TopP },
		parseFloat,
		func(s *Settings, v *float64) { s.TopP = v }),
	valueField(FieldFrequencyPenalty, EnvFrequencyPenalty,
		func(o Overrides) *float64 { return o.FrequencyPenalty },
		func(d Defaults) *float64 { return d.FrequencyPenalty },
		parseFloat,
		func(s *Settings, v *float64) { s.FrequencyPenalty = v }),
	valueField(FieldPresencePenalty, EnvPresencePenalty,
		func(o Overrides) *float64 { return o.PresencePenalty },
		func(d Defaults) *float64 { return d.PresencePenalty },
		parseFloat,
		func(s *Settings, v *float64) { s.PresencePenalty = v }),
}

// Resolve merges the four layers into the effective Settings.
//
// It fails with a KindConfig error when an environment value cannot be
// parsed (the error names the field and carries the raw string) or when
// base URL, secret or model is still missing after all layers.
func Resolve(defaults Defaults, env EnvReader, instance, call Overrides) (Settings, error) {
	s, err := ResolvePartial(defaults, env, instance, call)
	if err != nil {
		return Settings{}, err
	}
	if err := validateRequired(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ResolvePartial merges the layers like Resolve but does not require base
// URL, secret or model. It is used where only optional fields matter, such
// as locating the prompt directory.
func ResolvePartial(defaults Defaults, env EnvReader, instance, call Overrides) (Settings, error) {
	if env == nil {
		env = NoEnv
	}
	l := &layers{call: call, instance: instance, env: env, defaults: defaults}

	var s Settings
	for _, r := range resolvers {
		if err := r.apply(l, &s); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

// stringField builds a resolver for a string field. Empty strings are absent.
func stringField(field, env string, get func(Overrides) *string, def func(Defaults) string, set func(*Settings, string)) resolver {
	return resolver{field: field, env: env, apply: func(l *layers, s *Settings) error {
		for _, o := range []Overrides{l.call, l.instance} {
			if v := get(o); v != nil && *v != "" {
				set(s, *v)
				return nil
			}
		}
		if raw, ok := lookupEnv(l.env, env); ok {
			set(s, raw)
			return nil
		}
		if def != nil {
			set(s, def(l.defaults))
		}
		return nil
	}}
}

// valueField builds a resolver for a typed optional field parsed from the
// environment with parse.
func valueField[T any](field, env string, get func(Overrides) *T, def func(Defaults) *T, parse func(string) (T, error), set func(*Settings, *T)) resolver {
	return resolver{field: field, env: env, apply: func(l *layers, s *Settings) error {
		for _, o := range []Overrides{l.call, l.instance} {
			if v := get(o); v != nil {
				if err := checkValue(field, *v); err != nil {
					return err
				}
				set(s, util.Ptr(*v))
				return nil
			}
		}
		if raw, ok := lookupEnv(l.env, env); ok {
			v, err := parse(raw)
			if err != nil {
				return errors.ConfigValue(field, raw, err).WithDetail("env", env)
			}
			set(s, &v)
			return nil
		}
		if d := def(l.defaults); d != nil {
			if err := checkValue(field, *d); err != nil {
				return err
			}
			set(s, util.Ptr(*d))
			return nil
		}
		set(s, nil)
		return nil
	}}
}

// lookupEnv returns the sanitized value of key; empty values are absent.
func lookupEnv(env EnvReader, key string) (string, bool) {
	raw, ok := env.Lookup(key)
	if !ok {
		return "", false
	}
	raw = util.SanitizeEnvValue(raw)
	return raw, raw != ""
}

var errNotFinite = stderrors.New("value must be a finite number")

// parseFloat parses a finite float. NaN and infinities cannot be sent.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

// checkValue rejects programmatic float values that parseFloat would.
func checkValue[T any](field string, v T) error {
	f, ok := any(v).(float64)
	if !ok || (!math.IsNaN(f) && !math.IsInf(f, 0)) {
		return nil
	}
	return errors.ConfigValue(field, strconv.FormatFloat(f, 'g', -1, 64), errNotFinite)
}

// EnvName returns the environment variable backing field, or "" if unknown.
func EnvName(field string) string {
	for _, r := range resolvers {
		if r.field == field {
			return r.env
		}
	}
	return ""
}

// --- required field validation ---

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use json tag names for field names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		})
	})
	return validate
}

// validateRequired reports the required fields that no layer supplied.
func validateRequired(s Settings) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Config("settings", err.Error())
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	first := missing[0]
	cerr := errors.Config(first, "is required; set it on the call, the client, or "+EnvName(first))
	if len(missing) > 1 {
		cerr.Message = "missing required settings: " + strings.Join(missing, ", ")
	}
	return cerr.WithDetail("missing", missing)
}

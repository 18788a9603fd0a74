// Package config resolves the effective settings of a completion call.
//
// Four layers are merged per field, highest precedence first:
//
//  1. call-site overrides
//  2. instance overrides (client options, config file)
//  3. environment variables (LLMAID_<FIELD>)
//  4. built-in defaults
//
// Each field is resolved independently and the first layer holding a value
// wins. Resolution is pure: it never mutates the environment or the
// supplied overrides, and it either yields a complete [Settings] or fails
// with a KindConfig error before any request is built.
//
// # Usage
//
//	s, err := config.Resolve(config.DefaultDefaults(), config.OSEnv, instance, call)
//
// [LoadOverrides] reads an optional llmaid.yml (via Viper) and .env file
// (via godotenv) for use as the instance layer.
package config

// Package config provides centralized configuration for the consolidator.
// It loads settings from environment variables and an optional YAML file and
// holds the static business-rule tables used by the flag report processor.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml (./, ./configs, ../configs, or TINCLI_CONFIG)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TINCLI_<SECTION>_<FIELD>:
//
//	TINCLI_LOGGING_LEVEL=debug
//	TINCLI_INPUT_ENCODING=windows-1252
//	TINCLI_EXPORT_OUTPUT_DIR=/srv/outbound
//	TINCLI_EXPORT_EXCEL=true
//	TINCLI_SERVER_PORT=8080
//
// # Business Rules
//
// QcCheckErrorCodes and TinTypeNormalization are package-level tables rather
// than inline literals so tests and future rule changes touch one place.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

// Package config loads service configuration from a YAML file, an optional
// .env file, and the process environment, in that order of precedence
// (environment wins).
//
// Environment variables map onto nested keys by splitting on underscores:
// SERVER_PORT sets server.port and PIPELINE_PROXY_URL sets pipeline.proxy_url.
package config

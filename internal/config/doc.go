// Package config provides configuration structures and utilities for docmap.
// It defines the main configuration options for crawling documentation
// sites, processing archives, and per-site profiles loaded from .docmap.yml.
package config

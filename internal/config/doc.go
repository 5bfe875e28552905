// Package config defines the application configuration structure and loading.
package config

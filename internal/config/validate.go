package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/pders01/postdeck/internal/validation"
)

// Validate checks the structural invariants of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("api.base_url", c.API.BaseURL, c.validBaseURL),
		criterio.Run("search.engine", c.Search.Engine, validEngine),
		criterio.Run("log.level", c.Log.Level, validLogLevel),
		criterio.Run("keys.modifier", c.Keys.Modifier, notBlank),
		criterio.Run("database.path", c.Database.Path, validDatabasePath),
		criterio.Run("log.file", c.Log.File, validLogFile),
		c.validatePagination(),
		c.validateDurations(),
	)
}

func (c *Config) validBaseURL(raw string) error {
	_, err := validation.ValidatorFor(c.API.AllowPrivate).ValidateAndNormalize(raw)
	return err
}

// memoryDatabase matches storage.MemoryPath.
const memoryDatabase = ":memory:"

func validDatabasePath(path string) error {
	if path == memoryDatabase {
		return nil
	}
	_, err := validation.NewFilePathValidator().ValidateFile(path)
	return err
}

// validLogFile allows an empty path, which logs to the default location.
func validLogFile(path string) error {
	if path == "" {
		return nil
	}
	_, err := validation.NewFilePathValidator().ValidateFile(path)
	return err
}

func validEngine(engine string) error {
	switch engine {
	case EngineSubstring, EngineBleve:
		return nil
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", engine, EngineSubstring, EngineBleve)
	}
}

func validLogLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error", "off", "disabled":
		return nil
	default:
		return fmt.Errorf("unknown level %q", level)
	}
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

func (c *Config) validatePagination() error {
	var errs criterio.FieldErrorsBuilder

	if len(c.Pagination.PageSizes) == 0 {
		errs = errs.Append("pagination.page_sizes", fmt.Errorf("at least one page size is required"))
	}
	for i, size := range c.Pagination.PageSizes {
		if size <= 0 {
			errs = errs.Append(fmt.Sprintf("pagination.page_sizes[%d]", i), fmt.Errorf("must be positive, got %d", size))
		}
	}
	if c.Pagination.DefaultPageSize <= 0 {
		errs = errs.Append("pagination.default_page_size", fmt.Errorf("must be positive, got %d", c.Pagination.DefaultPageSize))
	} else if len(c.Pagination.PageSizes) > 0 && !slices.Contains(c.Pagination.PageSizes, c.Pagination.DefaultPageSize) {
		errs = errs.Append("pagination.default_page_size", fmt.Errorf("%d is not one of %v", c.Pagination.DefaultPageSize, c.Pagination.PageSizes))
	}

	return errs.ToError()
}

func (c *Config) validateDurations() error {
	var errs criterio.FieldErrorsBuilder
	if c.API.HTTPTimeout < 0 {
		errs = errs.Append("api.http_timeout", fmt.Errorf("must not be negative"))
	}
	if c.Database.Timeout < 0 {
		errs = errs.Append("database.timeout", fmt.Errorf("must not be negative"))
	}
	return errs.ToError()
}

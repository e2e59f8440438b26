// validate.go: validation of loaded configuration settings
package conf

import (
	"fmt"
	"strconv"
)

// ValidateSettings checks the loaded settings for configuration errors that
// would otherwise only surface at runtime, such as an unusable port or an
// ambiguous store selection.
func ValidateSettings(settings *Settings) error {
	if err := validateWebServerSettings(settings); err != nil {
		return err
	}
	return validateOutputSettings(settings)
}

func validateWebServerSettings(settings *Settings) error {
	if !settings.WebServer.Enabled {
		return nil
	}
	port, err := strconv.Atoi(settings.WebServer.Port)
	if err != nil {
		return fmt.Errorf("invalid web server port %q: %w", settings.WebServer.Port, err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("web server port %d out of range", port)
	}
	return nil
}

func validateOutputSettings(settings *Settings) error {
	sqliteEnabled := settings.Output.SQLite.Enabled
	mysqlEnabled := settings.Output.MySQL.Enabled

	switch {
	case sqliteEnabled && mysqlEnabled:
		return fmt.Errorf("only one database output can be enabled at a time")
	case !sqliteEnabled && !mysqlEnabled:
		return fmt.Errorf("no database output enabled")
	}

	if sqliteEnabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("sqlite output enabled but path is empty")
	}

	if mysqlEnabled {
		if settings.Output.MySQL.Host == "" || settings.Output.MySQL.Database == "" {
			return fmt.Errorf("mysql output enabled but host or database is empty")
		}
	}

	return nil
}

// defaults.go: default configuration values applied before the config file is read
package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets the default values for each configuration parameter.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main settings
	viper.SetDefault("main.name", "DroneAnalytics")

	// Web server settings
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.port", "8000")

	// Output settings
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "drone_analytics.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "droneanalytics")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.database", "droneanalytics")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}

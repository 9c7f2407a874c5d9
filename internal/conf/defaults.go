// defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets the default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main configuration
	viper.SetDefault("main.name", "Pokedex-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/pokedex.log")

	// Web server configuration
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	// Entity store configuration, SQLite enabled by default
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "pokedex.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "pokedex")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "pokedex")

	// Image asset configuration
	viper.SetDefault("media.path", "public/uploads/pokemons")
	viper.SetDefault("media.maxuploadsize", 2*1024*1024)

	// Security configuration
	viper.SetDefault("security.jwtsecret", "")
	viper.SetDefault("security.tokenexpiry", 24)
}

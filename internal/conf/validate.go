// validate.go settings validation
package conf

import (
	"errors"
	"fmt"
)

// minJWTSecretLength is the minimum length accepted for the token signing secret.
const minJWTSecretLength = 32

// ValidateSettings checks the loaded settings for inconsistencies that would
// prevent the application from starting.
func ValidateSettings(settings *Settings) error {
	var validationErrors []string

	if err := validateWebServerSettings(settings); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if err := validateOutputSettings(settings); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if err := validateMediaSettings(settings); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if err := validateSecuritySettings(settings); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("validation errors: %v", validationErrors)
	}

	return nil
}

func validateWebServerSettings(settings *Settings) error {
	if settings.WebServer.Enabled && settings.WebServer.Port == "" {
		return errors.New("webserver.port must not be empty")
	}
	return nil
}

func validateOutputSettings(settings *Settings) error {
	sqlite := settings.Output.SQLite.Enabled
	mysql := settings.Output.MySQL.Enabled

	switch {
	case !sqlite && !mysql:
		return errors.New("no entity store enabled, enable either output.sqlite or output.mysql")
	case sqlite && mysql:
		return errors.New("only one entity store may be enabled at a time")
	case sqlite && settings.Output.SQLite.Path == "":
		return errors.New("output.sqlite.path must not be empty")
	case mysql && settings.Output.MySQL.Database == "":
		return errors.New("output.mysql.database must not be empty")
	}

	return nil
}

func validateMediaSettings(settings *Settings) error {
	if settings.Media.Path == "" {
		return errors.New("media.path must not be empty")
	}
	if settings.Media.MaxUploadSize <= 0 {
		return errors.New("media.maxuploadsize must be greater than zero")
	}
	return nil
}

func validateSecuritySettings(settings *Settings) error {
	if settings.Security.JWTSecret == "" {
		return errors.New("security.jwtsecret must be set")
	}
	if len(settings.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("security.jwtsecret must be at least %d characters", minJWTSecretLength)
	}
	if settings.Security.TokenExpiry <= 0 {
		return errors.New("security.tokenexpiry must be greater than zero")
	}
	return nil
}

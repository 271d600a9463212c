package properties

import (
	"os"

	"github.com/joho/godotenv"
)

const defaultEarthEngineURL = "https://earthengine.googleapis.com"

// Load reads the first .env file found among paths into the environment.
// Variables already set are kept.
func Load(paths ...string) error {
	var err error
	for _, path := range paths {
		if err = godotenv.Load(path); err == nil {
			return nil
		}
	}
	return err
}

func RootPath() string {
	if root := os.Getenv("ROOT_PATH"); root != "" {
		return root
	}
	return "."
}

func EarthEngineProject() string {
	return os.Getenv("EE_PROJECT")
}

func EarthEngineURL() string {
	if url := os.Getenv("EE_API_URL"); url != "" {
		return url
	}
	return defaultEarthEngineURL
}

// EarthEngineServiceAccountKey is the path of a service account JSON key.
// When empty the application default credentials are used.
func EarthEngineServiceAccountKey() string {
	return os.Getenv("EE_SERVICE_ACCOUNT_KEY")
}

func EarthEngineClientID() string {
	return os.Getenv("EE_CLIENT_ID")
}

func EarthEngineClientSecret() string {
	return os.Getenv("EE_CLIENT_SECRET")
}

func EarthEngineTokenURL() string {
	return os.Getenv("EE_TOKEN_URL")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

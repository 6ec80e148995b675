package config

const (
	EnvPrefix = "PACKFINDERZ_CLIENT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "PACKFINDERZ_CLIENT_APP_ENV"
	EnvAPIBaseURL = "PACKFINDERZ_CLIENT_API_BASE_URL"
	EnvAPITimeout = "PACKFINDERZ_CLIENT_API_TIMEOUT"
	EnvStorePath  = "PACKFINDERZ_CLIENT_STORE_PATH"
)

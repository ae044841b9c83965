package config

// EnvPrefix is intentionally empty: every field carries its full CENTAVO_*
// variable name in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CENTAVO_DB_DSN"
	EnvDBHost = "CENTAVO_DB_HOST"
	EnvDBUser = "CENTAVO_DB_USER"
	EnvDBName = "CENTAVO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

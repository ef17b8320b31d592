package config

// EnvPrefix is the prefix for all environment variables
const EnvPrefix = "MARKETCLI"

// DefaultConfigFile is the config file looked up when MARKETCLI_CONFIG is
// not set
const DefaultConfigFile = "config.yaml"

// GeminiAPIKeyEnv is the conventional environment variable for the
// summarizer credential, checked when MARKETCLI_LLM_API_KEY is empty.
const GeminiAPIKeyEnv = "GEMINI_API_KEY"

// Cleaning strategy names accepted by the validator
const (
	StrategyDropRows    = "drop_rows"
	StrategyDropColumns = "drop_columns"
	StrategyImpute      = "impute"
)

// Values treated as missing when parsing CSV cells, compared after trimming
// and case folding
var MissingMarkers = []string{"", "na", "n/a", "nan", "null", "none"}

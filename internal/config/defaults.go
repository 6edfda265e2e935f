package config

const (
	defaultDataDir         = "~/.local/share/bindery"
	defaultLogDir          = "~/.local/share/bindery/logs"
	defaultCatalogBaseURL  = "https://gutendex.com"
	defaultCatalogRate     = 2.0
	defaultRequestTimeout  = 30
	defaultNotifyTimeout   = 10
	defaultJobDelaySeconds = 5
	defaultDownloadRetries = 3
	defaultMinQualityScore = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			RequestsPerSec: defaultCatalogRate,
			RequestTimeout: defaultRequestTimeout,
		},
		Metastore: Metastore{
			RequestTimeout: defaultRequestTimeout,
		},
		Storage: Storage{
			RequestTimeout: defaultRequestTimeout,
		},
		Processing: Processing{
			JobDelaySeconds: defaultJobDelaySeconds,
			DownloadRetries: defaultDownloadRetries,
			MinQualityScore: defaultMinQualityScore,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Started:        true,
			Published:      true,
			Rejected:       true,
			BatchComplete:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

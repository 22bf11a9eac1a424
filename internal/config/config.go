package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Keys as they appear in .excursions.yaml. Environment variables use the
// EXCURSIONS_ prefix with dots replaced by underscores, e.g.
// EXCURSIONS_CATALOG_BASE_URL.
const (
	KeyCatalogBaseURL       = "catalog.base_url"
	KeyCatalogPath          = "catalog.path"
	KeyCatalogFile          = "catalog.file"
	KeyCatalogTimeout       = "catalog.timeout"
	KeyCatalogRetryAttempts = "catalog.retry_attempts"

	KeyServerAddr      = "server.addr"
	KeyServerStaticDir = "server.static_dir"

	KeyDBDriver = "db.driver"
	KeyDBDSN    = "db.dsn"

	KeyCrawlerBaseURL  = "crawler.base_url"
	KeyCrawlerMaxPages = "crawler.max_pages"
	KeyCrawlerDelay    = "crawler.delay"
	KeyCrawlerWorkers  = "crawler.workers"
	KeyCrawlerChrome   = "crawler.chrome"
	KeyCrawlerOutput   = "crawler.output"

	KeyExtractOutput = "extract.output"
	KeyExportDir     = "export.dir"

	KeySFTPHost                  = "sftp.host"
	KeySFTPPort                  = "sftp.port"
	KeySFTPUser                  = "sftp.user"
	KeySFTPPass                  = "sftp.pass"
	KeySFTPDir                   = "sftp.dir"
	KeySFTPInsecureIgnoreHostKey = "sftp.insecure_ignore_hostkey"
	KeySFTPKnownHosts            = "sftp.known_hosts"

	KeyLogLevel = "log.level"
)

const (
	EnvPrefix  = "excursions"
	ConfigName = ".excursions"
)

type Config struct {
	// Catalog
	CatalogBaseURL       string
	CatalogPath          string
	CatalogFile          string // when set, read from disk instead of HTTP
	CatalogTimeout       time.Duration
	CatalogRetryAttempts int

	// API server
	ServerAddr      string
	ServerStaticDir string

	// Snapshot storage
	DBDriver string
	DBDSN    string

	// Crawler
	CrawlerBaseURL  string
	CrawlerMaxPages int
	CrawlerDelay    time.Duration
	CrawlerWorkers  int
	CrawlerChrome   bool
	CrawlerOutput   string

	ExtractOutput string
	ExportDir     string

	// SFTP
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
	SFTPKnownHosts            string

	LogLevel string
}

// SetDefaults registers every key with its default value. Keys must have
// a default for AutomaticEnv to pick them up.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCatalogBaseURL, "https://hostaotdykh.ru")
	v.SetDefault(KeyCatalogPath, "/json/excursions_complete.json")
	v.SetDefault(KeyCatalogFile, "")
	v.SetDefault(KeyCatalogTimeout, 30*time.Second)
	v.SetDefault(KeyCatalogRetryAttempts, 1)

	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyServerStaticDir, "")

	v.SetDefault(KeyDBDriver, "sqlite")
	v.SetDefault(KeyDBDSN, "excursions.db")

	v.SetDefault(KeyCrawlerBaseURL, "https://hostaotdykh.ru")
	v.SetDefault(KeyCrawlerMaxPages, 100)
	v.SetDefault(KeyCrawlerDelay, time.Second)
	v.SetDefault(KeyCrawlerWorkers, 4)
	v.SetDefault(KeyCrawlerChrome, false)
	v.SetDefault(KeyCrawlerOutput, "site_data.json")

	v.SetDefault(KeyExtractOutput, "excursions_complete.json")
	v.SetDefault(KeyExportDir, ".")

	v.SetDefault(KeySFTPHost, "")
	v.SetDefault(KeySFTPPort, 22)
	v.SetDefault(KeySFTPUser, "")
	v.SetDefault(KeySFTPPass, "")
	v.SetDefault(KeySFTPDir, "/inbound")
	v.SetDefault(KeySFTPInsecureIgnoreHostKey, false)
	v.SetDefault(KeySFTPKnownHosts, "~/.ssh/known_hosts")

	v.SetDefault(KeyLogLevel, "info")
}

// New returns a viper instance with defaults, environment binding and,
// if one exists, the config file. cfgFile overrides the search for
// .excursions.yaml in the working directory and $HOME.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir, err := os.Getwd(); err == nil {
			v.AddConfigPath(dir)
		}
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(ConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return v, nil
}

// Load resolves a Config from v.
func Load(v *viper.Viper) Config {
	return Config{
		CatalogBaseURL:       v.GetString(KeyCatalogBaseURL),
		CatalogPath:          v.GetString(KeyCatalogPath),
		CatalogFile:          expand(v.GetString(KeyCatalogFile)),
		CatalogTimeout:       v.GetDuration(KeyCatalogTimeout),
		CatalogRetryAttempts: atLeast(v.GetInt(KeyCatalogRetryAttempts), 1),

		ServerAddr:      v.GetString(KeyServerAddr),
		ServerStaticDir: expand(v.GetString(KeyServerStaticDir)),

		DBDriver: strings.ToLower(v.GetString(KeyDBDriver)),
		DBDSN:    v.GetString(KeyDBDSN),

		CrawlerBaseURL:  v.GetString(KeyCrawlerBaseURL),
		CrawlerMaxPages: atLeast(v.GetInt(KeyCrawlerMaxPages), 1),
		CrawlerDelay:    v.GetDuration(KeyCrawlerDelay),
		CrawlerWorkers:  atLeast(v.GetInt(KeyCrawlerWorkers), 1),
		CrawlerChrome:   v.GetBool(KeyCrawlerChrome),
		CrawlerOutput:   expand(v.GetString(KeyCrawlerOutput)),

		ExtractOutput: expand(v.GetString(KeyExtractOutput)),
		ExportDir:     expand(v.GetString(KeyExportDir)),

		SFTPHost:                  v.GetString(KeySFTPHost),
		SFTPPort:                  v.GetInt(KeySFTPPort),
		SFTPUser:                  v.GetString(KeySFTPUser),
		SFTPPass:                  v.GetString(KeySFTPPass),
		SFTPDir:                   v.GetString(KeySFTPDir),
		SFTPInsecureIgnoreHostKey: v.GetBool(KeySFTPInsecureIgnoreHostKey),
		SFTPKnownHosts:            expand(v.GetString(KeySFTPKnownHosts)),

		LogLevel: v.GetString(KeyLogLevel),
	}
}

func expand(path string) string {
	if path == "" {
		return ""
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return p
}

func atLeast(v, min int) int {
	if v < min {
		return min
	}
	return v
}

package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"

	"github.com/owlmon/owl/pkg/storage"
	"github.com/owlmon/owl/pkg/version"
	"github.com/owlmon/owl/pkg/view"
)

var au *aurora.Aurora

var (
	DefaultInterface = envutil.GetEnvOrDefault("OWL_INTERFACE", "any")
	CacheFileEnv     = envutil.GetEnvOrDefault("OWL_CACHE", "")
)

const defaultCacheFilename = "cache.sqlite"

// Options contains the configuration options for a monitoring session.
// Nothing here is mutable once the pipeline has started.
type Options struct {
	Interface string
	Filter    string

	Anonymize bool
	Columns   string
	Interval  int
	Locale    string

	CacheFile string
	NoCache   bool

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`owl passively monitors host announcements on the local network segment`)

	flagSet.CreateGroup("capture", "Capture",
		flagSet.StringVarP(&options.Interface, "interface", "i", DefaultInterface, "name of the capture interface"),
		flagSet.StringVarP(&options.Filter, "filter", "f", "", "additional packet filter in libpcap syntax"),
	)

	flagSet.CreateGroup("display", "Display",
		flagSet.BoolVarP(&options.Anonymize, "anonymize", "a", false, "anonymize computer names and ip addresses"),
		flagSet.StringVarP(&options.Columns, "columns", "c", "niA", fmt.Sprintf("columns to show (%s)", view.Usage())),
		flagSet.IntVarP(&options.Interval, "interval", "n", 2, "view refresh interval in seconds"),
		flagSet.StringVarP(&options.Locale, "locale", "l", "", "locale for the time-ago column"),
	)

	flagSet.CreateGroup("cache", "Cache",
		flagSet.StringVarP(&options.CacheFile, "cache", "C", CacheFileEnv, "sighting log location (default: user cache dir)"),
		flagSet.BoolVarP(&options.NoCache, "no-cache", "nC", false, "keep the sighting log in memory only"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only the live view"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	// configure aurora for logging
	au = aurora.New(aurora.WithColors(true))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.Version)
		os.Exit(0)
	}

	// reject configuration faults before any pipeline goroutine starts
	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) validate() error {
	if _, err := view.ParseColumns(options.Columns); err != nil {
		return err
	}
	if _, err := view.LocaleConfig(options.Locale); err != nil {
		return err
	}
	if options.Interval < 1 {
		return fmt.Errorf("refresh interval must be at least 1 second")
	}
	if options.NoCache && options.CacheFile != "" {
		return fmt.Errorf("-cache and -no-cache are mutually exclusive")
	}
	return nil
}

// CachePath resolves the sighting log location: in-memory with
// -no-cache, the explicit -cache file, otherwise a per-user default
// created on demand.
func (options *Options) CachePath() (string, error) {
	if options.NoCache {
		return storage.InMemory, nil
	}
	if options.CacheFile != "" {
		return options.CacheFile, nil
	}

	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache dir: %w", err)
	}
	cacheDir := filepath.Join(userCacheDir, "owl")
	if !fileutil.FolderExists(cacheDir) {
		if err := fileutil.CreateFolder(cacheDir); err != nil {
			return "", fmt.Errorf("failed to create cache dir %s: %w", cacheDir, err)
		}
	}
	return filepath.Join(cacheDir, defaultCacheFilename), nil
}

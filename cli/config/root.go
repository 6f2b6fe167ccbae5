package config

// RootConfig carries the persistent flag values shared by all subcommands.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
}

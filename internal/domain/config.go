package domain

// Config mirrors ~/.shlaunch/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	History             HistorySettings   `yaml:"history"`
	Execution           ExecutionSettings `yaml:"execution"`
}

// Preferences are the user-level options the core reads but never writes.
type Preferences struct {
	MaxHistorySize int    `yaml:"max_history_size"`
	DefaultShell   string `yaml:"default_shell"`
	ShellProfile   string `yaml:"shell_profile"`
	DebugMode      bool   `yaml:"debug_mode"`
}

// HistorySettings selects where the ledger is persisted.
type HistorySettings struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Timeout         string `yaml:"timeout"`
	DirectorySource string `yaml:"directory_source"`
}

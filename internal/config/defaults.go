package config

const (
	defaultSysctlFile     = "/etc/sysctl.conf"
	defaultProcRoot       = "/proc/sys"
	defaultLockFile       = "~/.local/state/sysctlr/sysctlr.lock"
	defaultJournalPath    = "~/.local/share/sysctlr/journal.db"
	defaultState          = "present"
	defaultChecks         = "both"
	defaultReload         = true
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultDebounceMillis = 500
)

var defaultReloadCommand = []string{"sysctl", "-p", "{file}"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SysctlFile:  defaultSysctlFile,
			ProcRoot:    defaultProcRoot,
			LockFile:    defaultLockFile,
			JournalPath: defaultJournalPath,
		},
		Defaults: Defaults{
			State:  defaultState,
			Checks: defaultChecks,
			Reload: defaultReload,
		},
		Reload: Reload{
			Command: append([]string(nil), defaultReloadCommand...),
		},
		Watch: Watch{
			DebounceMillis: defaultDebounceMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

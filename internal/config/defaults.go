package config

const (
	defaultBaseDir       = "~/Homework-Generation"
	defaultStateDir      = "~/.local/share/homework"
	defaultLogDir        = "~/.local/share/homework/logs"
	defaultFreePlanDir   = "Syntax Only"
	defaultPaidPlanDir   = "Syntax + Open-ended Question"
	defaultFreeCurrent   = 4
	defaultFreePast      = 2
	defaultPaidCurrent   = 4
	defaultPaidPast      = 1
	defaultLedgerFile    = "usage_history.json"
	defaultExcludeMarker = "보류"
	defaultCurrentDir    = "현행 챕터"
	defaultPastDir       = "지난 챕터"
	defaultQuestionsFile = "questions.json"
	defaultAskedFile     = "asked_questions.json"
	defaultCustomFile    = "custom_questions.json"
	defaultPitchWindow   = 5
	defaultPitchDBName   = "pitching.db"
	defaultRowHeight     = 140
	defaultHeaderHeight  = 50
	defaultMinWidth      = 560
	defaultJPEGQuality   = 90
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

var defaultExtensions = []string{".png", ".jpg", ".jpeg"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseDir:  defaultBaseDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Plans: Plans{
			FreeDir:      defaultFreePlanDir,
			PaidDir:      defaultPaidPlanDir,
			FreeCurrent:  defaultFreeCurrent,
			FreePast:     defaultFreePast,
			PaidCurrent:  defaultPaidCurrent,
			PaidPast:     defaultPaidPast,
			PaidQuestion: true,
		},
		Selection: Selection{
			LedgerFile:    defaultLedgerFile,
			Extensions:    append([]string(nil), defaultExtensions...),
			ExcludeMarker: defaultExcludeMarker,
			CurrentDir:    defaultCurrentDir,
			PastDir:       defaultPastDir,
		},
		Questions: Questions{
			QuestionsFile: defaultQuestionsFile,
			AskedFile:     defaultAskedFile,
			CustomFile:    defaultCustomFile,
		},
		Pitching: Pitching{
			Window: defaultPitchWindow,
		},
		Render: Render{
			RowHeight:    defaultRowHeight,
			HeaderHeight: defaultHeaderHeight,
			MinWidth:     defaultMinWidth,
			JPEGQuality:  defaultJPEGQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

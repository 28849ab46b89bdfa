package cfg

type Cfg struct {
	// Primary modes
	URL    string
	List   bool
	Delete bool

	// Reconstruction options
	EarliestEntry         string // ISO date, e.g. 2000-01-01
	LatestEntry           string // ISO date, empty means open bound
	IgnoreLiveFeedEntries bool
	Pretty                bool
	FullText              bool
	Retries               int
	SleepSeconds          float64

	// Application configuration
	DBPath    string
	UserAgent string
	Debug     bool
	Version   string
}

package appconf

import "time"

// Config holds all the configuration settings for the Application.
type Config struct {
	Port      int         `yaml:"port" validate:"gt=0,lte=65535"`
	Env       Environment `yaml:"-"`
	RateLimit int         `yaml:"rateLimit" validate:"gte=0"`
	// RefreshKeys guard POST /api/refresh. Empty leaves the endpoint open.
	RefreshKeys []string `yaml:"refreshKeys" validate:"dive,required"`
	Upstream    Upstream `yaml:"upstream"`
	Board       Board    `yaml:"board"`
}

// Upstream describes how the SL endpoints are reached.
type Upstream struct {
	DeparturesBaseURL  string        `yaml:"departuresBaseURL" validate:"required,url"`
	DisruptionsBaseURL string        `yaml:"disruptionsBaseURL" validate:"required,url"`
	Sites              []string      `yaml:"sites" validate:"required,min=1,dive,required,numeric"`
	RequestTimeout     time.Duration `yaml:"requestTimeout" validate:"gt=0"`
	RetryAttempts      int           `yaml:"retryAttempts" validate:"gte=1,lte=10"`
	RetryDelay         time.Duration `yaml:"retryDelay" validate:"gte=0"`
	// Concurrency bounds the fan-out across sites. Zero means one worker per site.
	Concurrency int `yaml:"concurrency" validate:"gte=0"`
}

// Board holds the business rules applied to upstream records.
type Board struct {
	Lines               []string      `yaml:"lines" validate:"required,min=1,dive,required,alphanum"`
	GlasbruksgatanLines []string      `yaml:"glasbruksgatanLines" validate:"dive,required,alphanum"`
	SlussbrogatanLines  []string      `yaml:"slussbrogatanLines" validate:"dive,required,alphanum"`
	PriorityThreshold   int           `yaml:"priorityThreshold" validate:"gte=0"`
	Language            string        `yaml:"language" validate:"required,len=2"`
	CacheTTL            time.Duration `yaml:"cacheTTL" validate:"gt=0"`
}

const (
	defaultDeparturesBaseURL  = "https://transport.integration.sl.se/v1"
	defaultDisruptionsBaseURL = "https://deviations.integration.sl.se/v1"
)

// Default returns the fixed configuration for the Slussen bus terminal.
func Default() Config {
	return Config{
		Port:      4000,
		Env:       Development,
		RateLimit: 10,
		Upstream: Upstream{
			DeparturesBaseURL:  defaultDeparturesBaseURL,
			DisruptionsBaseURL: defaultDisruptionsBaseURL,
			Sites:              []string{"9192", "1321"},
			RequestTimeout:     10 * time.Second,
			RetryAttempts:      3,
			RetryDelay:         500 * time.Millisecond,
		},
		Board: Board{
			Lines: []string{
				"401", "402", "409", "410", "413", "414", "420", "422", "425",
				"428X", "429X", "430X", "432", "433", "434", "435", "436", "437",
				"438", "439", "440", "441", "442", "443", "444", "445", "471",
				"474", "491", "496", "497", "25M", "26M", "423", "449", "71T",
			},
			GlasbruksgatanLines: []string{"25M", "26M", "423", "449"},
			SlussbrogatanLines:  []string{"71T"},
			PriorityThreshold:   35,
			Language:            "sv",
			CacheTTL:            60 * time.Second,
		},
	}
}

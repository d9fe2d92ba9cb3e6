package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 30
	}
	if cfg.RateLimit.SweepSeconds == 0 {
		cfg.RateLimit.SweepSeconds = 60
	}
	if cfg.Cache.VenueTTLHours == 0 {
		cfg.Cache.VenueTTLHours = 24
	}
	if cfg.Cache.SweepSeconds == 0 {
		cfg.Cache.SweepSeconds = 30
	}
	if cfg.Enrich.WikipediaBaseURL == "" {
		cfg.Enrich.WikipediaBaseURL = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.Enrich.WeatherBaseURL == "" {
		cfg.Enrich.WeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	if cfg.Enrich.SearchTimeoutSeconds == 0 {
		cfg.Enrich.SearchTimeoutSeconds = 8
	}
	if cfg.Enrich.WeatherTimeoutSeconds == 0 {
		cfg.Enrich.WeatherTimeoutSeconds = 10
	}
	if cfg.Narrative.BaseURL == "" {
		cfg.Narrative.BaseURL = "http://localhost:11434"
	}
	if cfg.Narrative.Model == "" {
		cfg.Narrative.Model = "llama3.2"
	}
	if cfg.Narrative.TimeoutSeconds == 0 {
		cfg.Narrative.TimeoutSeconds = 10
	}
}

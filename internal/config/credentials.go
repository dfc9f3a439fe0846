package config

import "os"

// Credentials holds the API secrets read from the environment. They
// are kept out of the YAML config so status files and config dumps can
// never leak them.
type Credentials struct {
	XAPIKey            string
	XAPISecret         string
	XAccessToken       string
	XAccessTokenSecret string
	AlphaVantageKey    string
	NewsAPIKey         string
}

// LoadCredentials reads all known credential environment variables.
func LoadCredentials() Credentials {
	return Credentials{
		XAPIKey:            os.Getenv("X_API_KEY"),
		XAPISecret:         os.Getenv("X_API_SECRET"),
		XAccessToken:       os.Getenv("X_ACCESS_TOKEN"),
		XAccessTokenSecret: os.Getenv("X_ACCESS_TOKEN_SECRET"),
		AlphaVantageKey:    os.Getenv("ALPHA_VANTAGE_API_KEY"),
		NewsAPIKey:         os.Getenv("NEWS_API_KEY"),
	}
}

// HasXCredentials reports whether all four X API credentials are set.
func (c Credentials) HasXCredentials() bool {
	return c.XAPIKey != "" && c.XAPISecret != "" &&
		c.XAccessToken != "" && c.XAccessTokenSecret != ""
}

package fetch

// Fingerprint is one coherent browser header set. Mixing headers from
// different browsers is itself a bot signal, so each entry stays
// internally consistent.
type Fingerprint struct {
	UserAgent      string
	AcceptLanguage string
	SecChUA        string
	SecChUAMobile  string
	SecChPlatform  string
}

var fingerprints = []Fingerprint{
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		SecChUA:        `"Chromium";v="142", "Google Chrome";v="142", "Not_A Brand";v="99"`,
		SecChUAMobile:  "?0",
		SecChPlatform:  `"Windows"`,
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		SecChUA:        `"Chromium";v="142", "Google Chrome";v="142", "Not_A Brand";v="99"`,
		SecChUAMobile:  "?0",
		SecChPlatform:  `"macOS"`,
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
		AcceptLanguage: "en-US,en;q=0.5",
	},
	{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36",
		AcceptLanguage: "en-GB,en;q=0.8",
		SecChUA:        `"Chromium";v="141", "Google Chrome";v="141", "Not_A Brand";v="99"`,
		SecChUAMobile:  "?0",
		SecChPlatform:  `"Linux"`,
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
		AcceptLanguage: "en-US,en;q=0.9",
	},
}

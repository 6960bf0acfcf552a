package config

type fileSchema struct {
	DataDir string        `toml:"data_dir"`
	Ollama  ollamaSchema  `toml:"ollama"`
	History historySchema `toml:"history"`
	Log     logSchema     `toml:"log"`
}

// Durations are kept as strings so the file reads "15ms" rather than nanoseconds.
type ollamaSchema struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	PollInterval   string `toml:"poll_interval"`
	RequestTimeout string `toml:"request_timeout"`
}

type historySchema struct {
	Turns int `toml:"turns"`
}

type logSchema struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
	File     string `toml:"file"`
}

func toSchema(c Config) fileSchema {
	return fileSchema{
		DataDir: c.DataDir,
		Ollama: ollamaSchema{
			BaseURL:        c.Ollama.BaseURL,
			Model:          c.Ollama.Model,
			PollInterval:   c.Ollama.PollInterval.String(),
			RequestTimeout: c.Ollama.RequestTimeout.String(),
		},
		History: historySchema{Turns: c.History.Turns},
		Log: logSchema{
			Level:    c.Log.Level,
			Encoding: c.Log.Encoding,
			File:     c.Log.File,
		},
	}
}

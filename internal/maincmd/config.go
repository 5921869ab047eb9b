package maincmd

import "github.com/caarlos0/env/v6"

// config holds the environment-variable overrides layered under the CLI
// flags: JPLC_RUNTIME_HEADER picks the #include path cgen puts at the top
// of its output, and JPLC_OPTIMIZE sets the default -O1 state when the
// flag itself is absent.
type config struct {
	RuntimeHeader string `env:"JPLC_RUNTIME_HEADER" envDefault:"rt/runtime.h"`
	Optimize      bool   `env:"JPLC_OPTIMIZE" envDefault:"false"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}

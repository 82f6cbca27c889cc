package runningaverage

const DefaultWeight = 0.1

type Config struct {
	// Weight is the contribution of every new frame to the average; 1 means
	// no smoothing, 0 freezes the average at the first frame.
	Weight float64
}

func DefaultConfig() Config {
	return Config{
		Weight: DefaultWeight,
	}
}

func (cfg Config) Validate() error {
	if !isValidWeight(cfg.Weight) {
		return ErrInvalidWeight{Weight: cfg.Weight}
	}
	return nil
}

func isValidWeight(w float64) bool {
	return w >= 0 && w <= 1
}

package lda

// Defaults used when a Config field is zero.
const (
	DefaultNumTopics           = 3
	DefaultPasses              = 15
	DefaultSeed                = 42
	DefaultEta                 = 0.01
	DefaultIterations          = 20
	DefaultInferenceIterations = 50
	DefaultMinimumProbability  = 0.01
	DefaultBackend             = "scvb"
)

// Config controls one fit.
type Config struct {
	NumTopics int   `yaml:"num_topics"`
	Passes    int   `yaml:"passes"`
	Seed      int64 `yaml:"seed"`
	// Alpha is the symmetric document-topic prior; 0 means 1/NumTopics.
	Alpha float64 `yaml:"alpha"`
	// Eta is the symmetric topic-word prior.
	Eta float64 `yaml:"eta"`
	// Iterations is the number of sweeps per pass.
	Iterations          int     `yaml:"iterations"`
	InferenceIterations int     `yaml:"inference_iterations"`
	MinimumProbability  float64 `yaml:"minimum_probability"`
	Backend             string  `yaml:"backend"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		NumTopics:           DefaultNumTopics,
		Passes:              DefaultPasses,
		Seed:                DefaultSeed,
		Eta:                 DefaultEta,
		Iterations:          DefaultIterations,
		InferenceIterations: DefaultInferenceIterations,
		MinimumProbability:  DefaultMinimumProbability,
		Backend:             DefaultBackend,
	}
}

// ClampTopics bounds k to [1, vocabSize]. A zero vocabulary still yields 1.
func ClampTopics(k, vocabSize int) int {
	if k > vocabSize {
		k = vocabSize
	}
	if k < 1 {
		k = 1
	}
	return k
}

// normalized fills zero fields with defaults and clamps the topic count.
// A zero NumTopics is clamped to 1, matching the handling of negatives.
func (c Config) normalized(vocabSize int) Config {
	c.NumTopics = ClampTopics(c.NumTopics, vocabSize)
	if c.Passes <= 0 {
		c.Passes = DefaultPasses
	}
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.InferenceIterations <= 0 {
		c.InferenceIterations = DefaultInferenceIterations
	}
	if c.Alpha <= 0 {
		c.Alpha = 1 / float64(c.NumTopics)
	}
	if c.Eta <= 0 {
		c.Eta = DefaultEta
	}
	if c.MinimumProbability <= 0 {
		c.MinimumProbability = DefaultMinimumProbability
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	return c
}

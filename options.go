package xlsxio

import "runtime"

type readConfig struct {
	limits      Limits
	ignoreNodes []string
	maxRows     int
	maxCols     int
	concurrency int
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithIgnoreNodes skips every element with one of the given local names,
// together with its subtree, in every part that is parsed.
func WithIgnoreNodes(names ...string) ReadOption {
	return func(c *readConfig) { c.ignoreNodes = append(c.ignoreNodes, names...) }
}

// WithMaxRows fails the read with ErrLimitExceeded when a worksheet holds
// more than n rows. Zero means unlimited.
func WithMaxRows(n int) ReadOption {
	return func(c *readConfig) { c.maxRows = n }
}

// WithMaxCols fails the read with ErrLimitExceeded when a row holds more
// than n cells. Zero means unlimited.
func WithMaxCols(n int) ReadOption {
	return func(c *readConfig) { c.maxCols = n }
}

// WithReadConcurrency bounds how many parts are parsed at once.
func WithReadConcurrency(n int) ReadOption {
	return func(c *readConfig) { c.concurrency = n }
}

type writeConfig struct {
	limits        Limits
	sharedStrings bool
	styles        bool
	compression   Compression
	level         int
	concurrency   int
}

type WriteOption func(*writeConfig)

func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}

// WithSharedStrings controls whether text cells go through the shared
// string table (the default) or are written inline.
func WithSharedStrings(v bool) WriteOption {
	return func(c *writeConfig) { c.sharedStrings = v }
}

// WithStyles controls whether cell formatting is written. With styles off
// no styles part is produced and every cell uses the default format.
func WithStyles(v bool) WriteOption {
	return func(c *writeConfig) { c.styles = v }
}

func WithCompression(comp Compression) WriteOption {
	return func(c *writeConfig) { c.compression = comp }
}

// WithCompressionLevel sets the codec level, e.g. 0-9 for deflate.
func WithCompressionLevel(level int) WriteOption {
	return func(c *writeConfig) { c.level = level }
}

// WithWriteConcurrency bounds how many parts are rendered at once.
func WithWriteConcurrency(n int) WriteOption {
	return func(c *writeConfig) { c.concurrency = n }
}

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.concurrency <= 0 {
		cfg.concurrency = runtime.GOMAXPROCS(0)
	}
	return cfg
}

func newWriteConfig(opts []WriteOption) writeConfig {
	cfg := writeConfig{
		limits:        defaultLimits(),
		sharedStrings: true,
		styles:        true,
		compression:   CompressionDeflate,
		level:         DefaultCompressionLevel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.concurrency <= 0 {
		cfg.concurrency = runtime.GOMAXPROCS(0)
	}
	return cfg
}

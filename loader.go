package mrtrie

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// recordFields is the number of tab-separated fields per record:
// MRGID, GeoName, Language and Placetype.
const recordFields = 4

// Entity is a retained gazetteer record reduced to its name tokens and id.
type Entity struct {
	Tokens []string
	ID     string
}

// LoadStats summarizes one pass of the loader over a source.
type LoadStats struct {
	Records   int // lines read, excluding the header
	Malformed int // lines with the wrong field count
	Filtered  int // lines rejected by an exclusion rule
	Empty     int // names that tokenize to nothing
	Entities  int // entities emitted
}

// LoaderConfig contains configuration options for a Loader.
type LoaderConfig struct {
	Filter *Filter
	Logger logrus.FieldLogger
	Fs     afero.Fs
}

// Option is a functional option for configuring a Loader.
type Option func(*LoaderConfig)

// WithFilter sets the exclusion rules applied to records.
func WithFilter(f *Filter) Option {
	return func(c *LoaderConfig) {
		c.Filter = f
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *LoaderConfig) {
		c.Logger = l
	}
}

// WithFs sets the filesystem ReadFile opens sources from.
func WithFs(fs afero.Fs) Option {
	return func(c *LoaderConfig) {
		c.Fs = fs
	}
}

func defaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Filter: DefaultFilter(),
		Logger: logrus.StandardLogger(),
		Fs:     afero.NewOsFs(),
	}
}

// Loader reads gazetteer exports into entities.
type Loader struct {
	filter *Filter
	log    logrus.FieldLogger
	fs     afero.Fs
}

// NewLoader creates a Loader. Without options it applies DefaultFilter,
// logs to the logrus standard logger and reads from the OS filesystem.
func NewLoader(opts ...Option) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Loader{
		filter: cfg.Filter,
		log:    cfg.Logger.WithField("component", "loader"),
		fs:     cfg.Fs,
	}
}

// ReadFile opens path on the loader's filesystem and reads entities from it.
// Failing to open the source is returned before any record is processed.
func (l *Loader) ReadFile(path string) ([]Entity, LoadStats, error) {
	fi, err := l.fs.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fi.Close()

	l.log.Infof("reading entities from file %s", path)
	return l.Read(fi)
}

// Read parses a tab-separated export with fields MRGID, GeoName, Language
// and Placetype. The first line is a header and is discarded. Malformed,
// filtered and empty-named records are skipped; the returned entities keep
// input order. Only a failure of r itself is returned as an error.
func (l *Loader) Read(r io.Reader) ([]Entity, LoadStats, error) {
	var (
		entities []Entity
		stats    LoadStats
	)

	br := bufio.NewReader(r)

	// header
	if _, ok, err := readLine(br); err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	} else if !ok {
		return nil, stats, nil
	}

	for {
		line, ok, err := readLine(br)
		if err != nil {
			return nil, stats, fmt.Errorf("reading records: %w", err)
		}
		if !ok {
			break
		}
		stats.Records++

		e, ok := l.parseRecord(line, &stats)
		if !ok {
			continue
		}
		entities = append(entities, e)
	}

	stats.Entities = len(entities)
	l.log.Infof("%d entities", stats.Entities)
	return entities, stats, nil
}

// parseRecord turns one line into an Entity, updating stats for every
// rejected line.
func (l *Loader) parseRecord(line string, stats *LoadStats) (Entity, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) != recordFields {
		stats.Malformed++
		l.log.Warnf("ill-formed line: %s", line)
		return Entity{}, false
	}
	id, name, placeType := fields[0], fields[1], fields[3]

	if reason := l.filter.Skip(name, placeType); reason != SkipNone {
		stats.Filtered++
		l.log.WithField("rule", string(reason)).Debugf("skipping: %s", line)
		return Entity{}, false
	}

	// TODO: strip punctuation and reorder inverted names like "Narrows, The".
	tokens := Tokenize(name)
	if len(tokens) == 0 {
		stats.Empty++
		l.log.Debugf("skipping empty name: %s", line)
		return Entity{}, false
	}

	return Entity{Tokens: tokens, ID: id}, true
}

// readLine returns the next line without its "\n" or "\r\n" terminator.
// Lines have no length limit. ok is false once r is exhausted.
func readLine(r *bufio.Reader) (line string, ok bool, err error) {
	line, err = r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", false, nil
		}
		err = nil
	}
	if err != nil {
		return "", false, err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

// Tokenize splits a name on runs of whitespace. It never yields empty tokens.
func Tokenize(name string) []string {
	return strings.Fields(name)
}

package logging

import (
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Resource kinds reported under "resources" in the cold-start event.
const (
	kindS3Bucket     = "s3Buckets"
	kindDynamoTable  = "dynamoTables"
	kindSSMParam     = "ssmParams"
	kindMediaConvert = "mediaConvert"
	kindEventBus     = "eventBuses"
)

// StartupLogger collects a Lambda's identity, the AWS resources it was wired
// to, and its feature flags, then emits them as one structured event so a
// cold start's configuration can be read from a single CloudWatch line.
type StartupLogger struct {
	name         string
	commitHash   string
	buildTime    string
	initDuration time.Duration

	resources map[string]map[string]string
	features  map[string]bool
}

// NewStartupLogger creates a StartupLogger for the given Lambda name
// (e.g. "upload-trigger-lambda").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:      name,
		resources: make(map[string]map[string]string),
		features:  make(map[string]bool),
	}
}

func (s *StartupLogger) resource(kind, label, value string) *StartupLogger {
	if value == "" {
		return s
	}
	m, ok := s.resources[kind]
	if !ok {
		m = make(map[string]string)
		s.resources[kind] = m
	}
	m[label] = value
	return s
}

// CommitHash sets the git commit hash baked into the binary at build time.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// BuildTime sets the UTC build timestamp baked into the binary at build time.
func (s *StartupLogger) BuildTime(t string) *StartupLogger {
	s.buildTime = t
	return s
}

func (s *StartupLogger) S3Bucket(label, name string) *StartupLogger {
	return s.resource(kindS3Bucket, label, name)
}

func (s *StartupLogger) DynamoTable(label, name string) *StartupLogger {
	return s.resource(kindDynamoTable, label, name)
}

// SSMParam registers an SSM parameter path. Only the path is logged, never
// the value.
func (s *StartupLogger) SSMParam(label, path string) *StartupLogger {
	return s.resource(kindSSMParam, label, path)
}

// MediaConvert registers a MediaConvert role, queue, or endpoint.
func (s *StartupLogger) MediaConvert(label, value string) *StartupLogger {
	return s.resource(kindMediaConvert, label, value)
}

func (s *StartupLogger) EventBus(label, name string) *StartupLogger {
	return s.resource(kindEventBus, label, name)
}

// Feature registers a boolean feature flag (e.g. "statusEvents", "tagging").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// InitDuration records how long cold-start initialization took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits the collected information as a single INFO event.
func (s *StartupLogger) Log() {
	lambdaDict := zerolog.Dict().
		Str("name", s.name).
		Str("functionName", os.Getenv("AWS_LAMBDA_FUNCTION_NAME")).
		Str("version", os.Getenv("AWS_LAMBDA_FUNCTION_VERSION")).
		Str("region", os.Getenv("AWS_REGION")).
		Str("memoryMB", os.Getenv("AWS_LAMBDA_FUNCTION_MEMORY_SIZE")).
		Str("goVersion", runtime.Version()).
		Str("logLevel", os.Getenv(LevelEnvVar))
	if s.commitHash != "" {
		lambdaDict = lambdaDict.Str("commitHash", s.commitHash)
	}
	if s.buildTime != "" {
		lambdaDict = lambdaDict.Str("buildTime", s.buildTime)
	}

	evt := log.Info().Dict("lambda", lambdaDict)

	if len(s.resources) > 0 {
		res := zerolog.Dict()
		for _, kind := range sortedKeys(s.resources) {
			res = res.Dict(kind, dictFromMap(s.resources[kind]))
		}
		evt = evt.Dict("resources", res)
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for _, k := range sortedKeys(s.features) {
			d = d.Bool(k, s.features[k])
		}
		evt = evt.Dict("features", d)
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Lambda cold start complete")
}

func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for _, k := range sortedKeys(m) {
		d = d.Str(k, m[k])
	}
	return d
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

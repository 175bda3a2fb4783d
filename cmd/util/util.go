package util

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/mount-tech/typedb/lib/codec"
	"github.com/mount-tech/typedb/lib/logging"
	"github.com/mount-tech/typedb/lib/retry"
	"github.com/mount-tech/typedb/lib/store/fstore"
	"github.com/mount-tech/typedb/lib/value"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the flags needed to open a store to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "file"
	cmd.PersistentFlags().String(key, "db.cab", WrapString("Path of the store file (created if missing)"))

	key = "codec"
	cmd.PersistentFlags().String(key, codec.NameBinary, WrapString("Snapshot format of the file (binary, gob, json). Switching the format of an existing file is not possible"))

	key = "compress"
	cmd.PersistentFlags().Bool(key, false, WrapString("Compress the snapshot with zstd"))

	key = "retries"
	cmd.PersistentFlags().Int(key, retry.DefaultAttempts, WrapString("How many times to attempt a load or write of the file"))

	key = "lock-retries"
	cmd.PersistentFlags().Int(key, retry.DefaultAttempts, WrapString("How many times to attempt a single lock acquisition"))

	key = "retry-interval"
	cmd.PersistentFlags().Duration(key, retry.DefaultInterval, WrapString("Pause between two attempts"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print store metrics in Prometheus text format after the command"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("typedb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// InitLogging configures all loggers with the configured level
func InitLogging() error {
	return logging.Init(viper.GetString("log-level"))
}

// GetCodec creates the snapshot codec based on configuration
func GetCodec() (codec.Codec[string, value.Value], error) {
	return codec.ForValues(viper.GetString("codec"), viper.GetBool("compress"))
}

// GetStoreOptions reads the store options from viper
func GetStoreOptions() (*fstore.Options[string, value.Value], error) {
	c, err := GetCodec()
	if err != nil {
		return nil, err
	}

	retries := viper.GetInt("retries")
	lockRetries := viper.GetInt("lock-retries")
	if retries < 1 || lockRetries < 1 {
		return nil, fmt.Errorf("retries and lock-retries must be at least 1 (got %d and %d)", retries, lockRetries)
	}
	interval := viper.GetDuration("retry-interval")

	opts := fstore.DefaultOptions[string, value.Value]()
	opts.Codec = c
	opts.Clone = value.Value.Clone
	opts.Retry = retry.Policy{Attempts: retries, Interval: interval}
	opts.LockRetry = retry.Policy{Attempts: lockRetries, Interval: interval}
	return opts, nil
}

// OpenStore opens the configured store file
func OpenStore() (*fstore.Store[string, value.Value], error) {
	opts, err := GetStoreOptions()
	if err != nil {
		return nil, err
	}
	return fstore.Open(viper.GetString("file"), opts)
}

// StoreConfigString describes the configured store in one line per setting
func StoreConfigString() string {
	return fmt.Sprintf("File: %s\nCodec: %s (compress=%v)\nRetries: %d (lock: %d, interval: %s)",
		viper.GetString("file"),
		viper.GetString("codec"),
		viper.GetBool("compress"),
		viper.GetInt("retries"),
		viper.GetInt("lock-retries"),
		viper.GetDuration("retry-interval").Round(time.Microsecond),
	)
}

// WriteMetrics writes all store metrics to w if enabled
func WriteMetrics(w io.Writer) {
	if viper.GetBool("metrics") {
		metrics.WritePrometheus(w, false)
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

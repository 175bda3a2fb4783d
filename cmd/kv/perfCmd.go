package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mount-tech/typedb/cmd/util"
	"github.com/mount-tech/typedb/lib/store/fstore"
	"github.com/mount-tech/typedb/lib/value"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for typedb store files",
		Long: util.WrapString(`Runs a set of benchmarks against the configured store file. Every worker
opens its own store instance, so the numbers include lock contention between instances.`),
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__perf"
	perfLargeValueSizeKB = 16
	perfNumThreads       = 4
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 4, util.WrapString("Number of workers (each with its own store instance)"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 16, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	// keys of different runs on the same file must not collide
	perfKeyPrefix = "__perf-" + uuid.NewString()[:8]

	return nil
}

// perfResult is the outcome of one benchmark
type perfResult struct {
	bench  testing.BenchmarkResult
	timer  gometrics.Timer
	errors int64
}

// perfRun collects latencies and errors of one benchmark across all workers
type perfRun struct {
	name   string
	timer  gometrics.Timer
	errors *xsync.MapOf[string, *xsync.Counter]
}

func newPerfRun(name string) *perfRun {
	return &perfRun{
		name:   name,
		timer:  gometrics.NewTimer(),
		errors: xsync.NewMapOf[string, *xsync.Counter](),
	}
}

// do times op and counts its error (by operation) if any
func (r *perfRun) do(op string, fn func() error) {
	start := time.Now()
	err := fn()
	r.timer.UpdateSince(start)
	if err != nil {
		c, _ := r.errors.LoadOrCompute(op, xsync.NewCounter)
		c.Inc()
		if c.Value() == 1 {
			log.Printf("(%s) - error performing %s: %v\n", r.name, op, err)
		}
	}
}

func (r *perfRun) errorCount() int64 {
	var n int64
	r.errors.Range(func(_ string, c *xsync.Counter) bool {
		n += c.Value()
		return true
	})
	return n
}

// openWorkerStore opens a store instance for one benchmark worker
func openWorkerStore(r *perfRun) *fstore.Store[string, value.Value] {
	s, err := util.OpenStore()
	if err != nil {
		r.do("open", func() error { return err })
		return nil
	}
	return s
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for typedb store files")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.StoreConfigString())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Key prefix: %s\n", perfKeyPrefix)
	fmt.Println()

	fmt.Println("starting tests...")

	// setup store used to prepare and clean up keys
	setupStore, err := util.OpenStore()
	if err != nil {
		return err
	}
	defer setupStore.Close()

	results := make(map[string]perfResult)
	large := value.String(strings.Repeat("x", perfLargeValueSizeKB*1024))

	benchmarks := []struct {
		name    string
		prepare bool
		op      func(s *fstore.Store[string, value.Value], r *perfRun, key string, i int)
	}{
		{"set", false, func(s *fstore.Store[string, value.Value], r *perfRun, key string, _ int) {
			r.do("insert", func() error { return s.Insert(key, value.String("test")) })
		}},
		{"set-large", false, func(s *fstore.Store[string, value.Value], r *perfRun, key string, _ int) {
			r.do("insert", func() error { return s.Insert(key, large) })
		}},
		{"get", true, func(s *fstore.Store[string, value.Value], r *perfRun, key string, _ int) {
			r.do("get", func() error { _, _, err := s.Get(key); return err })
		}},
		{"has", true, func(s *fstore.Store[string, value.Value], r *perfRun, key string, _ int) {
			r.do("has", func() error { _, err := s.Has(key); return err })
		}},
		{"delete", true, func(s *fstore.Store[string, value.Value], r *perfRun, key string, _ int) {
			r.do("remove", func() error { return s.Remove(key) })
		}},
		{"incr", false, func(s *fstore.Store[string, value.Value], r *perfRun, key string, _ int) {
			r.do("update", func() error {
				return s.Update(func(m map[string]value.Value) error {
					_, err := increment(m, key, 1)
					return err
				})
			})
		}},
		{"mixed", true, func(s *fstore.Store[string, value.Value], r *perfRun, key string, i int) {
			switch i % 4 {
			case 0: // set
				r.do("insert", func() error { return s.Insert(key, value.String("test")) })
			case 1: // get
				r.do("get", func() error { _, _, err := s.Get(key); return err })
			case 2: // delete
				r.do("remove", func() error { return s.Remove(key) })
			case 3: // has
				r.do("has", func() error { _, err := s.Has(key); return err })
			}
		}},
	}

	for _, bm := range benchmarks {
		if shouldSkip(bm.name) {
			results[bm.name] = perfResult{}
			printResult(bm.name, perfResult{})
			continue
		}

		r := newPerfRun(bm.name)
		keys := getKeys(bm.name)

		if bm.prepare {
			if err := fillKeys(setupStore, keys); err != nil {
				log.Printf("(%s) - error setting keys: %v\n", bm.name, err)
			}
		}

		bench := testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				s := openWorkerStore(r)
				if s == nil {
					for pb.Next() {
					}
					return
				}
				defer s.Close()

				counter := 0
				for pb.Next() {
					bm.op(s, r, keys[counter%len(keys)], counter)
					counter++
				}
			})
		})

		// cleanup
		if err := removeKeys(setupStore, keys); err != nil {
			log.Printf("(%s) - error deleting keys: %v\n", bm.name, err)
		}

		res := perfResult{bench: bench, timer: r.timer, errors: r.errorCount()}
		results[bm.name] = res
		printResult(bm.name, res)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// getKeys creates the test keys of one benchmark
func getKeys(prefix string) []string {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}
	return keys
}

// fillKeys inserts all keys with one write
func fillKeys(s *fstore.Store[string, value.Value], keys []string) error {
	return s.Update(func(m map[string]value.Value) error {
		for _, k := range keys {
			m[k] = value.String("test")
		}
		return nil
	})
}

// removeKeys removes all keys with one write
func removeKeys(s *fstore.Store[string, value.Value], keys []string) error {
	return s.Update(func(m map[string]value.Value) error {
		for _, k := range keys {
			delete(m, k)
		}
		return nil
	})
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	if result.bench.NsPerOp() == 0 || result.timer == nil {
		fmt.Printf("%-12sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	p := result.timer.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-12s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\terrors=%d\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(p[0]), time.Duration(p[1]), result.errors)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P99", "Errors", "Skipped",
		"File", "Codec", "Compress", "Retries", "LockRetries", "RetryInterval",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp, opsPerSec, p50, p99 float64
		var skipped string

		if result.bench.NsPerOp() == 0 || result.timer == nil {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.bench.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
			p := result.timer.Percentiles([]float64{0.5, 0.99})
			p50, p99 = p[0], p[1]
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(p50).String(),
			time.Duration(p99).String(),
			strconv.FormatInt(result.errors, 10),
			skipped,
			viper.GetString("file"),
			viper.GetString("codec"),
			strconv.FormatBool(viper.GetBool("compress")),
			strconv.Itoa(viper.GetInt("retries")),
			strconv.Itoa(viper.GetInt("lock-retries")),
			viper.GetDuration("retry-interval").String(),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}

package cmd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/haystackd/haystackd/pkg/client"
)

// benchOptions holds the CLI flags for bench.
type benchOptions struct {
	queryOptions
	clients  int
	requests int
	query    string
}

func newBenchCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure request latency against a running server",
		Long: `Run concurrent clients against a running server and print latency
statistics as CSV.

Examples:
  haystackd bench --clients 50 --requests 100 --query "test string 1"
  haystackd bench --port 44445 --clients 10 --requests 1000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, opts)
		},
	}

	addQueryFlags(cmd, &opts.queryOptions)
	cmd.Flags().IntVar(&opts.clients, "clients", 10, "Number of concurrent clients")
	cmd.Flags().IntVar(&opts.requests, "requests", 100, "Requests per client")
	cmd.Flags().StringVar(&opts.query, "query", "test string 1", "Query string to send")

	return cmd
}

func runBench(cmd *cobra.Command, opts benchOptions) error {
	var mu sync.Mutex
	latencies := make([]time.Duration, 0, opts.clients*opts.requests)
	errors := 0

	start := time.Now()
	var g errgroup.Group
	for i := 0; i < opts.clients; i++ {
		g.Go(func() error {
			c := client.New(opts.addr(), opts.clientOptions())
			local := make([]time.Duration, 0, opts.requests)
			failed := 0
			for j := 0; j < opts.requests; j++ {
				t0 := time.Now()
				if _, err := c.Query(opts.query); err != nil {
					failed++
					continue
				}
				local = append(local, time.Since(t0))
			}
			mu.Lock()
			latencies = append(latencies, local...)
			errors += failed
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if len(latencies) == 0 {
		return fmt.Errorf("all %d requests failed", opts.clients*opts.requests)
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	avg := total / time.Duration(len(latencies))
	p50 := latencies[len(latencies)/2]
	p95 := latencies[len(latencies)*95/100]
	qps := float64(len(latencies)) / elapsed.Seconds()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "clients,requests,errors,min_us,avg_us,p50_us,p95_us,max_us,qps")
	fmt.Fprintf(out, "%d,%d,%d,%d,%d,%d,%d,%d,%.0f\n",
		opts.clients,
		opts.clients*opts.requests,
		errors,
		latencies[0].Microseconds(),
		avg.Microseconds(),
		p50.Microseconds(),
		p95.Microseconds(),
		latencies[len(latencies)-1].Microseconds(),
		qps)
	return nil
}

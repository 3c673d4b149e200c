package cmd

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haystackd/haystackd/internal/config"
	"github.com/haystackd/haystackd/pkg/client"
)

// queryOptions holds the CLI flags for query and bench.
type queryOptions struct {
	host     string
	port     int
	ssl      bool
	insecure bool
	timeout  time.Duration
}

func (o queryOptions) addr() string {
	return net.JoinHostPort(o.host, strconv.Itoa(o.port))
}

func (o queryOptions) clientOptions() client.Options {
	return client.Options{TLS: o.ssl, InsecureSkipVerify: o.insecure, Timeout: o.timeout}
}

func addQueryFlags(cmd *cobra.Command, opts *queryOptions) {
	cmd.Flags().StringVar(&opts.host, "host", "localhost", "Server host")
	cmd.Flags().IntVar(&opts.port, "port", config.DefaultPort, "Server port")
	cmd.Flags().BoolVar(&opts.ssl, "ssl", false, "Connect with TLS")
	cmd.Flags().BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "Per-request timeout")
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <string>",
		Short: "Send one query to a running server",
		Long: `Send one query string to a running server and print the response.

Examples:
  haystackd query "test string 1"
  haystackd query --host 10.0.0.5 --port 44445 "test string 1"
  haystackd query --ssl --insecure "test string 1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(opts.addr(), opts.clientOptions())
			resp, err := c.Query(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp)
			return err
		},
	}

	addQueryFlags(cmd, &opts)
	return cmd
}

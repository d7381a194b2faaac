// Package main is the entry point for the echo server demo.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"domainlog/internal/api"
	"domainlog/internal/client"
	"domainlog/internal/config"
	"domainlog/internal/echo"
	"domainlog/internal/logger"
	"domainlog/internal/metrics"
	"domainlog/internal/output"
)

var (
	version = "dev"
)

// RootDomain はアプリケーション全体のドメイン名
const RootDomain = "echo-server"

type options struct {
	addr        string
	adminAddr   string
	logConfig   string
	maxConns    int
	acceptLimit int
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Fatal は記録済み
		if !logger.IsFatal(err) {
			fmt.Fprintf(os.Stderr, "echo-server: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:           "echo-server",
		Short:         "TCP echo server with domain-scoped logging",
		Long:          "echo-server accepts TCP connections and echoes every byte back. Each session logs under its own domain.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logConfig, "log-config", "", "ログ設定ファイル (YAML/JSON/TOML)。未指定なら "+config.EnvConfigPath+" とカレントディレクトリを探す")

	rootCmd.Flags().StringVar(&opts.addr, "addr", echo.DefaultConfig().Addr, "待ち受けアドレス")
	rootCmd.Flags().StringVar(&opts.adminAddr, "admin-addr", "", "管理 API のアドレス (例: :8080)。空なら起動しない")
	rootCmd.Flags().IntVar(&opts.maxConns, "max-conns", echo.DefaultConfig().MaxConns, "同時接続数の上限")
	rootCmd.Flags().IntVar(&opts.acceptLimit, "accept-limit", 0, "この接続数で検証エラーとして停止する (0で無制限)")

	rootCmd.AddCommand(newCheckCommand(&opts))
	rootCmd.AddCommand(newOutputsCommand())
	rootCmd.AddCommand(newBenchCommand(&opts))

	return rootCmd
}

// loadRoot はログ設定を読み込み、出力種別を検証した Root を返す
func loadRoot(path string) (*logger.Root, error) {
	tree, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	root := logger.NewRoot(tree, output.DefaultRegistry())
	if err := root.Check(); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}
	return root, nil
}

// runServer はエコーサーバーを起動し、シグナルを受けるまで動作する
func runServer(parent context.Context, opts options) error {
	root, err := loadRoot(opts.logConfig)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(root.Context(parent))
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return logger.Run(ctx, func(ctx context.Context) error {
		return logger.Branch(ctx, RootDomain, func(ctx context.Context) error {
			wait := shutdownHook(ctx)
			defer wait()
			defer cancel()

			server := echo.NewServer(echo.Config{
				Addr:        opts.addr,
				MaxConns:    opts.maxConns,
				AcceptLimit: opts.acceptLimit,
			})

			if opts.adminAddr != "" {
				go func() {
					if err := api.NewServer(opts.adminAddr, server).Start(ctx); err != nil {
						logger.ErrorErr(ctx, err, func() string { return "admin API stopped" })
					}
				}()
			}

			return server.ListenAndServe(ctx)
		})
	})
}

// shutdownHook は ctx の終了時に別のゴルーチンから停止を記録する
// 返り値の関数は記録が終わるまで待つ
func shutdownHook(ctx context.Context) func() {
	h := logger.From(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		_ = logger.Using(context.Background(), h, func(ctx context.Context) error {
			logger.Info(ctx, func() string { return "application stopped" })
			return nil
		})
	}()

	return func() { <-done }
}

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the log configuration and print the resolved domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := loadRoot(opts.logConfig)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			root.Tree().Walk(func(domain string, n *config.Node) {
				if domain == "" {
					domain = "<root>"
				}
				fmt.Fprintf(out, "%-30s %-8s %s\n", domain, n.Severity(), n.Output())
			})
			return nil
		},
	}
}

func newOutputsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "List the available output kinds",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, kind := range output.DefaultRegistry().Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
		},
	}
}

func newBenchCommand(opts *options) *cobra.Command {
	benchConfig := client.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Generate load against a running echo server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := loadRoot(opts.logConfig)
			if err != nil {
				return err
			}

			var snap *metrics.Snapshot
			err = logger.Run(root.Context(cmd.Context()), func(ctx context.Context) error {
				snap, err = client.New(benchConfig).Run(ctx)
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sessions: %d, failed: %d, bytes: %d, p99: %v\n",
				snap.ClosedConnections, snap.FailedConnections, snap.BytesEchoed, snap.P99Lifetime)
			if snap.FailedConnections > 0 {
				return fmt.Errorf("%d of %d sessions failed", snap.FailedConnections, snap.ClosedConnections)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&benchConfig.Addr, "addr", benchConfig.Addr, "エコーサーバーのアドレス")
	cmd.Flags().IntVar(&benchConfig.NumWorkers, "workers", benchConfig.NumWorkers, "ワーカー数 (0でCPU数)")
	cmd.Flags().IntVar(&benchConfig.Sessions, "sessions", benchConfig.Sessions, "接続数")
	cmd.Flags().IntVar(&benchConfig.Messages, "messages", benchConfig.Messages, "1接続あたりの送信数")
	cmd.Flags().IntVar(&benchConfig.PayloadSize, "payload", benchConfig.PayloadSize, "送信サイズ (バイト)")
	cmd.Flags().DurationVar(&benchConfig.DialTimeout, "dial-timeout", benchConfig.DialTimeout, "接続タイムアウト")

	return cmd
}

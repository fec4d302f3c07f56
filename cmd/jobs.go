package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-zarinpal/app/factory"
	"github.com/vibast-solutions/ms-go-zarinpal/app/mapper"
	"github.com/vibast-solutions/ms-go-zarinpal/app/provider"
	"github.com/vibast-solutions/ms-go-zarinpal/app/service"
	"github.com/vibast-solutions/ms-go-zarinpal/app/types"
	"github.com/vibast-solutions/ms-go-zarinpal/config"
)

var (
	workerMode bool

	verifyAuthority  string
	verifyAmount     int64
	refreshAuthority string
	refreshExpireIn  int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a paid authority",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := &types.VerifyPaymentRequest{Authority: verifyAuthority, Amount: verifyAmount}
		req.Normalize()
		if err := req.Validate(); err != nil {
			return err
		}
		return runGatewayCommand(cmd.OutOrStdout(), "verify", func(s *service.PaymentService, ctx context.Context) (*provider.Response, error) {
			return s.VerifyPayment(ctx, req)
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Extend the lifetime of an unpaid authority",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := &types.RefreshAuthorityRequest{Authority: refreshAuthority, ExpireIn: refreshExpireIn}
		req.Normalize()
		if err := req.Validate(); err != nil {
			return err
		}
		return runGatewayCommand(cmd.OutOrStdout(), "refresh", func(s *service.PaymentService, ctx context.Context) (*provider.Response, error) {
			return s.RefreshAuthority(ctx, req)
		})
	},
}

var unverifiedCmd = &cobra.Command{
	Use:   "unverified",
	Short: "Report paid transactions that were never verified",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"unverified_report",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.UnverifiedPollInterval },
			func(s *service.PaymentService, ctx context.Context) error {
				return s.RunUnverifiedReport(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(unverifiedCmd)

	verifyCmd.Flags().StringVar(&verifyAuthority, "authority", "", "Authority returned by the payment request")
	verifyCmd.Flags().Int64Var(&verifyAmount, "amount", 0, "Amount the payment was requested with")
	_ = verifyCmd.MarkFlagRequired("amount")

	refreshCmd.Flags().StringVar(&refreshAuthority, "authority", "", "Authority to refresh")
	refreshCmd.Flags().IntVar(&refreshExpireIn, "expire-in", provider.MinExpireIn, "New lifetime in seconds")
	_ = refreshCmd.MarkFlagRequired("authority")

	unverifiedCmd.Flags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

// runGatewayCommand runs a single gateway call and prints its envelope. A
// call Zarinpal did not accept fails the command.
func runGatewayCommand(
	out io.Writer,
	name string,
	fn func(s *service.PaymentService, ctx context.Context) (*provider.Response, error),
) error {
	_, paymentService := mustCreatePaymentService()

	ctx := factory.ContextWithRequestID(context.Background(), uuid.NewString())
	resp, err := fn(paymentService, ctx)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(mapper.ResponseToType(resp), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(encoded))

	if !resp.OK {
		return fmt.Errorf("%s: %w: status=%d", name, service.ErrGatewayFailure, resp.Status)
	}
	return nil
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.PaymentService, ctx context.Context) error,
) {
	cfg, paymentService := mustCreatePaymentService()

	if workerMode {
		runWorker(name, intervalResolver(cfg), paymentService, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(paymentService, jobContext(ctx)) })
}

func runWorker(
	name string,
	interval time.Duration,
	paymentService *service.PaymentService,
	fn func(s *service.PaymentService, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(paymentService, jobContext(ctx)) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(paymentService, jobContext(ctx)) })
		}
	}
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}

// jobContext tags each run so its gateway calls share a request id in logs.
func jobContext(ctx context.Context) context.Context {
	return factory.ContextWithRequestID(ctx, uuid.NewString())
}

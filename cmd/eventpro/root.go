package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/biyonik/eventpro/internal/config"
	"github.com/biyonik/eventpro/internal/observability"
	"github.com/biyonik/eventpro/internal/patterns/factory"
	"github.com/biyonik/eventpro/internal/patterns/strategy"
	"github.com/biyonik/eventpro/pkg/mail"
)

// app holds what every subcommand needs, built once in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:           "eventpro",
		Short:         "Event lifecycle, notification and certificate core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logger.Level = logLevel
			}
			logger, err := observability.NewLogger(cfg.Logger.Level)
			if err != nil {
				return err
			}
			a.cfg, a.logger, a.metrics = cfg, logger, observability.NewMetrics()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults LOG_LEVEL or info)")

	root.AddCommand(newDemoCmd(a), newChannelsCmd(a), newVerifyCmd(a))
	return root
}

// dispatcher builds a notification dispatcher from configuration. With
// instant set, channels skip their simulated latency.
func (a *app) dispatcher(instant bool) *factory.Dispatcher {
	n := a.cfg.Notification
	opts := factory.ChannelOptions{
		Mailer:     mail.NewLogMailer(a.logger),
		From:       mail.Address{Email: n.FromAddress, Name: n.FromName},
		EmailDelay: n.EmailDelay,
		SMSDelay:   n.SMSDelay,
		PushDelay:  n.PushDelay,
		Logger:     a.logger,
	}
	if instant {
		opts.EmailDelay, opts.SMSDelay, opts.PushDelay = 0, 0, 0
	}
	return factory.NewDispatcher(opts,
		factory.WithSendTimeout(n.SendTimeout),
		factory.WithRateLimit(n.RatePerSecond, n.Burst),
		factory.WithMetrics(a.metrics))
}

func (a *app) signer() (*strategy.Signer, error) {
	return strategy.NewSigner(a.cfg.Certificates.SigningSecret, a.cfg.Certificates.Issuer)
}

func (a *app) issuer() (*strategy.Issuer, error) {
	signer, err := a.signer()
	if err != nil {
		return nil, err
	}
	options := []strategy.IssuerOption{
		strategy.WithConcurrency(a.cfg.Certificates.Concurrency),
		strategy.WithSigner(signer),
		strategy.WithLogger(a.logger),
		strategy.WithIssuerMetrics(a.metrics),
	}
	if a.cfg.Certificates.QRCodes {
		options = append(options, strategy.WithQRCodes(nil, a.cfg.Certificates.VerifyBaseURL))
	}
	return strategy.NewIssuer(options...), nil
}

func newChannelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List supported notification channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range a.dispatcher(true).SupportedChannels() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "verify <token>",
		Short:   "Verify a certificate verification token",
		Example: "  eventpro verify eyJhbGciOiJIUzI1NiIs...",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := a.signer()
			if err != nil {
				return err
			}
			claims, err := signer.Verify(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "certificate:  %s\n", claims.CertificateID)
			fmt.Fprintf(out, "kind:         %s\n", claims.Kind)
			fmt.Fprintf(out, "participant:  %s\n", claims.Subject)
			fmt.Fprintf(out, "event:        %s\n", claims.EventID)
			fmt.Fprintf(out, "code:         %s\n", claims.VerificationCode)
			if claims.IssuedAt != nil {
				fmt.Fprintf(out, "issued at:    %s\n", claims.IssuedAt.Time.Format(time.RFC3339))
			}
			return nil
		},
	}
}

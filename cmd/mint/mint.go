package mint

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/nft-minter/internal/chain"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/identity"
	"github/chapool/nft-minter/internal/metadata"
	"github/chapool/nft-minter/internal/metrics"
	"github/chapool/nft-minter/internal/minter"
	"github/chapool/nft-minter/internal/util"
	"github/chapool/nft-minter/internal/util/command"
)

const (
	manifestFlag       = "manifest"
	programmableFlag   = "programmable"
	dryRunFlag         = "dry-run"
	verifyMetadataFlag = "verify-metadata"
	metricsAddrFlag    = "metrics-addr"
)

type options struct {
	manifest       string
	programmable   bool
	dryRun         bool
	verifyMetadata bool
	metricsAddr    string
}

func New() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mints every manifest item and transfers it to the recipient",
		Long: `Mints one token per manifest item under its collection and transfers it to the
manifest recipient before moving on. The first unconfirmed mint or transfer
aborts the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithMinterConfig(cmd.Context(), command.ConfigPath(cmd), func(ctx context.Context, cfg config.Minter) error {
				return run(ctx, cmd, cfg, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.manifest, manifestFlag, "", "Batch manifest (TOML); the built-in devnet batch when empty")
	cmd.Flags().BoolVar(&opts.programmable, programmableFlag, false, "Mint programmable NFTs regardless of the manifest")
	cmd.Flags().BoolVar(&opts.dryRun, dryRunFlag, false, "Validate and print the plan without touching the network")
	cmd.Flags().BoolVar(&opts.verifyMetadata, verifyMetadataFlag, false, "Fetch every metadata URI before minting")
	cmd.Flags().StringVar(&opts.metricsAddr, metricsAddrFlag, "", "Serve Prometheus metrics on this address while the batch runs")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, cfg config.Minter, opts options) error {
	log := util.LogFromContext(ctx).With().Str("component", "mint_cmd").Logger()

	manifest, err := config.LoadManifest(opts.manifest)
	if err != nil {
		return err
	}

	batch := manifest.Batch()
	if opts.programmable {
		batch.Programmable = true
	}
	if err := batch.Validate(); err != nil {
		return errors.Wrap(err, "invalid batch")
	}

	if opts.dryRun {
		printPlan(cmd.OutOrStdout(), cfg, batch)
		return nil
	}

	if opts.verifyMetadata {
		if err := metadata.NewChecker().CheckAll(ctx, batch.Items); err != nil {
			return err
		}
	}

	curve, err := identity.CurveFor(cfg.Network)
	if err != nil {
		return err
	}

	holder, err := identity.Load(ctx, cfg.Identity, curve)
	if err != nil {
		return errors.Wrap(err, "failed to load identity")
	}
	defer holder.Clear()

	backend, err := chain.New(ctx, cfg, holder)
	if err != nil {
		return errors.Wrap(err, "failed to connect token service")
	}
	defer backend.Close()

	observer := metrics.New()
	observer.SetBatchItems(len(batch.Items))

	addr := opts.metricsAddr
	if addr == "" {
		addr = cfg.MetricsAddr
	}
	if addr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		if err := observer.Start(serveCtx, addr); err != nil {
			return err
		}
	}

	m, err := minter.New(backend.Tokens, backend.Authority, minter.WithObserver(observer))
	if err != nil {
		return err
	}

	results, runErr := m.Run(ctx, batch)
	if err := command.PrintJSON(cmd, results); err != nil {
		log.Warn().Err(err).Msg("Failed to print results")
	}

	return runErr
}

func printPlan(w io.Writer, cfg config.Minter, batch minter.Batch) {
	fmt.Fprintf(w, "network:      %s\n", cfg.Network)
	fmt.Fprintf(w, "recipient:    %s\n", batch.Recipient)
	fmt.Fprintf(w, "programmable: %t\n", batch.Programmable)
	fmt.Fprintf(w, "royalty:      %d bp\n", batch.RoyaltyBasisPoints)
	for _, c := range batch.Creators {
		fmt.Fprintf(w, "creator:      %s %d%%\n", c.Address, c.Share)
	}
	for _, req := range batch.Requests() {
		fmt.Fprintf(w, "%3d  %-8s %s  %s\n", req.Index, req.Name, req.Collection, req.MetadataURI)
	}
}

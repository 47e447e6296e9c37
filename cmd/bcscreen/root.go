package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seqtoolkit/bcscreen/internal/config"
	"github.com/seqtoolkit/bcscreen/internal/seqio"
	"github.com/seqtoolkit/bcscreen/pkg/bcscreen"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bcscreen",
	Short: "Screen sequencing reads for mid-read barcode/adapter contamination",
	Long: `bcscreen aligns every read against a barcode/adapter panel using
Smith-Waterman local alignment with affine gap penalties. Reads whose best
alignment score reaches the threshold are discarded as contaminated; the rest
are kept. Both partitions and a run log are written to the output directory.`,
	Version:       bcscreen.Version(),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runScreen,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.StringP("reads", "r", "", "reads file, FASTQ or FASTA, optionally gzipped (required)")
	flags.StringP("barcodes", "b", "", "barcode/adapter FASTA file (required)")
	flags.StringP("out-dir", "o", ".", "output directory")
	flags.Int("match", 2, "match score")
	flags.Int("mismatch", -1, "mismatch penalty (non-positive)")
	flags.Int("gap-open", 5, "gap open penalty")
	flags.Int("gap-extend", 1, "gap extend penalty")
	flags.IntP("min-score", "s", 30, "minimum alignment score to call a read contaminated")
	flags.IntP("threads", "t", 0, "worker threads (0 = all CPUs)")
	flags.Bool("no-revcomp", false, "do not add reverse complements to the panel")
	flags.Bool("no-progress", false, "disable the progress bar")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.bcscreen.yaml)")

	must(viper.BindPFlag("reads", flags.Lookup("reads")))
	must(viper.BindPFlag("barcodes", flags.Lookup("barcodes")))
	must(viper.BindPFlag("out-dir", flags.Lookup("out-dir")))
	must(viper.BindPFlag("match", flags.Lookup("match")))
	must(viper.BindPFlag("mismatch", flags.Lookup("mismatch")))
	must(viper.BindPFlag("gap-open", flags.Lookup("gap-open")))
	must(viper.BindPFlag("gap-extend", flags.Lookup("gap-extend")))
	must(viper.BindPFlag("min-score", flags.Lookup("min-score")))
	must(viper.BindPFlag("threads", flags.Lookup("threads")))
	must(viper.BindPFlag("no-revcomp", flags.Lookup("no-revcomp")))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".bcscreen")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("BCSCREEN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func runScreen(cmd *cobra.Command, args []string) error {
	opts, err := config.FromViper()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	model, err := opts.Model()
	if err != nil {
		return err
	}
	for _, warning := range model.Warnings() {
		log.Printf("warning: %s", warning)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Ctrl-C stops pulling new reads; in-flight work completes.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var progress func(uint64)
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if !noProgress {
		total, err := progressTotal(opts.Reads)
		if err != nil {
			return err
		}
		if total >= 0 {
			bar := pb.StartNew(total)
			defer bar.Finish()
			progress = func(n uint64) { bar.SetCurrent(int64(n)) }
		}
	}

	result, err := bcscreen.RunFiles(ctx, opts, progress)
	if err != nil {
		return err
	}

	s := result.Summary
	log.Printf("Total reads: %d", s.Total)
	log.Printf("Reads kept: %d -> %s", s.Clean, result.KeptPath)
	log.Printf("Reads discarded: %d -> %s", s.Contaminated, result.DiscardedPath)
	log.Printf("Log: %s", result.LogPath)
	return nil
}

// progressTotal counts the reads so the bar has a total, matching the
// original tool's two-pass flow. It returns -1 for stdin, which can only be
// consumed once; the run then proceeds without a bar.
func progressTotal(reads string) (int, error) {
	if reads == "-" {
		return -1, nil
	}
	return seqio.Count(reads)
}

func must(err error) {
	if err != nil {
		log.Fatalf("%v", err)
	}
}

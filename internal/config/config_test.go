package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	opts := Defaults()
	assert.Equal(t, ".", opts.OutDir)
	assert.Equal(t, 2, opts.Match)
	assert.Equal(t, -1, opts.Mismatch)
	assert.Equal(t, 5, opts.GapOpen)
	assert.Equal(t, 1, opts.GapExtend)
	assert.Equal(t, 30, opts.MinScore)
	assert.Equal(t, 0, opts.Threads)
	assert.False(t, opts.NoRevComp)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Reads = "reads.fastq"
	valid.Barcodes = "barcodes.fasta"

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{"missing reads", func(o *Options) { o.Reads = "" }, "reads file is required"},
		{"missing barcodes", func(o *Options) { o.Barcodes = "" }, "barcodes file is required"},
		{"zero match", func(o *Options) { o.Match = 0 }, "match_score"},
		{"positive mismatch", func(o *Options) { o.Mismatch = 2 }, "mismatch_penalty"},
		{"negative gap open", func(o *Options) { o.GapOpen = -1 }, "gap_open_penalty"},
		{"zero min score", func(o *Options) { o.MinScore = 0 }, "min_score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModel(t *testing.T) {
	opts := Defaults()
	m, err := opts.Model()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Match)
	// Penalties are stored as magnitudes.
	assert.Equal(t, 1, m.Mismatch)
}

func TestFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("reads", "sample.fastq.gz")
	viper.Set("barcodes", "panel.fasta")
	viper.Set("min-score", 25)
	viper.Set("threads", 8)
	viper.Set("no-revcomp", true)

	opts, err := FromViper()
	require.NoError(t, err)

	assert.Equal(t, "sample.fastq.gz", opts.Reads)
	assert.Equal(t, "panel.fasta", opts.Barcodes)
	assert.Equal(t, 25, opts.MinScore)
	assert.Equal(t, 8, opts.Threads)
	assert.True(t, opts.NoRevComp)

	// Unset keys keep their defaults.
	assert.Equal(t, 2, opts.Match)
	assert.Equal(t, ".", opts.OutDir)
}

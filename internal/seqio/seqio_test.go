package seqio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"reads.fastq", FormatFASTQ},
		{"reads.fq", FormatFASTQ},
		{"reads.fastq.gz", FormatFASTQ},
		{"reads.fasta", FormatFASTA},
		{"reads.fa", FormatFASTA},
		{"reads.fa.gz", FormatFASTA},
		{"READS.FASTA", FormatFASTA},
		{"sample", FormatFASTQ},
		{"weird.txt", FormatFASTQ},
		{"archive.gz", FormatFASTQ},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.filename), "filename %q", tt.filename)
	}
}

func TestFormatStringAndExt(t *testing.T) {
	assert.Equal(t, "FASTQ", FormatFASTQ.String())
	assert.Equal(t, "FASTA", FormatFASTA.String())
	assert.Equal(t, "fastq", FormatFASTQ.Ext())
	assert.Equal(t, "fasta", FormatFASTA.Ext())
}

func TestWriterFormatting(t *testing.T) {
	t.Run("fastq", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriterTo(&buf, FormatFASTQ)
		w.Write(Record{ID: "r1", Name: "r1 sample=a", Seq: []byte("ACGT"), Qual: []byte("IIII")})
		w.Write(Record{ID: "r2", Name: "r2", Seq: []byte("GGCC"), Qual: []byte("FFFF")})
		require.NoError(t, w.Close())

		want := "@r1 sample=a\nACGT\n+\nIIII\n@r2\nGGCC\n+\nFFFF\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("fasta drops quality", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriterTo(&buf, FormatFASTA)
		w.Write(Record{ID: "r1", Name: "r1", Seq: []byte("ACGT"), Qual: []byte("IIII")})
		require.NoError(t, w.Close())

		assert.Equal(t, ">r1\nACGT\n", buf.String())
	})

	t.Run("fastq pads missing quality", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriterTo(&buf, FormatFASTQ)
		w.Write(Record{ID: "r1", Name: "r1", Seq: []byte("ACGTAC")})
		require.NoError(t, w.Close())

		assert.Equal(t, "@r1\nACGTAC\n+\nIIIIII\n", buf.String())
	})

	t.Run("empty writer", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriterTo(&buf, FormatFASTQ)
		require.NoError(t, w.Close())
		assert.Empty(t, buf.String())
	})
}

func TestWriterBatching(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterTo(&buf, FormatFASTA)
	// Cross the cache boundary a few times.
	for i := 0; i < defaultCache*3+7; i++ {
		w.Write(Record{Name: "r", Seq: []byte("A")})
	}
	require.NoError(t, w.Close())
	assert.Equal(t, defaultCache*3+7, bytes.Count(buf.Bytes(), []byte(">")))
}

func TestReaderFastq(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fastq")
	content := "@r1 desc here\nACGTACGT\n+\nIIIIIIII\n@r2\nGGGG\n+\nFFFF\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, []byte("ACGTACGT"), rec.Seq)
	assert.Equal(t, []byte("IIIIIIII"), rec.Qual)

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "r2", rec.ID)
	assert.Equal(t, []byte("GGGG"), rec.Seq)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	// io.EOF is sticky.
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderFasta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fasta")
	content := ">r1\nACGT\nACGT\n>r2\nTTTT\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.ID)
	// Wrapped sequence lines are joined.
	assert.Equal(t, []byte("ACGTACGT"), rec.Seq)
	assert.Nil(t, rec.Qual)

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "r2", rec.ID)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

// Abandoning a reader before EOF must not strand a parser goroutine; the
// HTTP surface closes readers mid-file on every timed-out request.
func TestReaderAbandonedMidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fastq")
	var content bytes.Buffer
	for i := 0; i < 50000; i++ {
		content.WriteString("@r\nACGTACGTACGTACGT\n+\nIIIIIIIIIIIIIIII\n")
	}
	require.NoError(t, os.WriteFile(path, content.Bytes(), 0o644))

	before := runtime.NumGoroutine()
	for i := 0; i < 10; i++ {
		r, err := Open(path)
		require.NoError(t, err)
		_, err = r.Next()
		require.NoError(t, err)
		require.NoError(t, r.Close())
	}

	// Give any stragglers a moment to exit before counting.
	var after int
	for i := 0; i < 50; i++ {
		after = runtime.NumGoroutine()
		if after <= before {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, after, before, "abandoned readers leaked goroutines")
}

func TestReaderMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.fastq"))
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fastq")
	var content bytes.Buffer
	for i := 0; i < 300; i++ {
		content.WriteString("@r\nACGT\n+\nIIII\n")
	}
	require.NoError(t, os.WriteFile(path, content.Bytes(), 0o644))

	n, err := Count(path)
	require.NoError(t, err)
	assert.Equal(t, 300, n)
}

// Records written through a file Writer parse back identically, including
// through gzip.
func TestWriterReaderRoundTrip(t *testing.T) {
	for _, name := range []string{"out.fastq", "out.fastq.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			w, err := NewWriter(path, FormatFASTQ)
			require.NoError(t, err)
			w.Write(Record{ID: "r1", Name: "r1", Seq: []byte("ACGTACGT"), Qual: []byte("IIIIIIII")})
			w.Write(Record{ID: "r2", Name: "r2", Seq: []byte("TTTT"), Qual: []byte("FFFF")})
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()

			rec, err := r.Next()
			require.NoError(t, err)
			assert.Equal(t, "r1", rec.ID)
			assert.Equal(t, []byte("ACGTACGT"), rec.Seq)

			rec, err = r.Next()
			require.NoError(t, err)
			assert.Equal(t, "r2", rec.ID)
			assert.Equal(t, []byte("FFFF"), rec.Qual)

			_, err = r.Next()
			assert.Equal(t, io.EOF, err)
		})
	}
}

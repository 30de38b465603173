package vcf

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

func TestParse_SingleVariant(t *testing.T) {
	content := header + "22\t42522501\trs3892097\tC\tT\t100\tPASS\tDP=100\n"

	res := Parse(content, Options{})

	require.Len(t, res.Variants, 1)
	assert.Equal(t, 1, res.VariantCount)
	assert.Len(t, res.Metadata, 2)

	v := res.Variants[0]
	assert.Equal(t, "22", v.Chrom)
	assert.Equal(t, int64(42522501), v.Pos)
	assert.Equal(t, "rs3892097", v.ID)
	assert.Equal(t, "C", v.Ref)
	assert.Equal(t, "T", v.Alt)
	assert.Equal(t, "100", v.Qual)
	assert.Equal(t, "PASS", v.Filter)
	assert.Equal(t, map[string]string{"DP": "100"}, v.Info)
	assert.Equal(t, 3, v.Line)
	assert.Equal(t, "VCFv4.2", res.FileFormat())
}

func TestParse_HeadersOnly(t *testing.T) {
	res := Parse(header, Options{})

	assert.Empty(t, res.Variants)
	assert.Equal(t, 0, res.VariantCount)
	assert.Equal(t, 0, res.DataLines)
	assert.Empty(t, res.Warnings)
}

func TestParse_ChromPrefixNormalized(t *testing.T) {
	content := header +
		"chr22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\n" +
		"CHR10\t94781859\trs4244285\tG\tA\t100\tPASS\t.\n"

	res := Parse(content, KeepChromosomes("22", "10"))

	require.Len(t, res.Variants, 2)
	assert.Equal(t, "22", res.Variants[0].Chrom)
	assert.Equal(t, "10", res.Variants[1].Chrom)
	assert.Equal(t, "chr22", res.Variants[0].RawChr)
	assert.Equal(t, ".", res.Variants[0].RawInfo)
}

func TestParse_ChromosomeFilter(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\n" +
		"3\t12345\trs999\tA\tG\t100\tPASS\t.\n" +
		"chr3\t12346\trs998\tA\tG\t100\tPASS\t.\n"

	res := Parse(content, KeepChromosomes("chr22"))
	require.Len(t, res.Variants, 1)
	assert.Equal(t, "rs3892097", res.Variants[0].ID)
	assert.Equal(t, 2, res.FilteredLines)
	assert.Equal(t, 3, res.DataLines)

	all := Parse(content, Options{})
	assert.Len(t, all.Variants, 3)
	assert.Equal(t, 0, all.FilteredLines)
}

func TestParse_MalformedLineSkipped(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\n" +
		"22\t42523943\trs1065852\tC\tT\t100\n" +
		"22\t42524947\trs16947\tG\tA\t100\tPASS\t.\n"

	res := Parse(content, Options{})

	require.Len(t, res.Variants, 2)
	assert.Equal(t, "rs3892097", res.Variants[0].ID)
	assert.Equal(t, "rs16947", res.Variants[1].ID)
	assert.Equal(t, 1, res.MalformedLines)

	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, SeverityWarning, w.Severity)
	assert.Equal(t, 4, w.Line)
	assert.Contains(t, w.Message, "line 4")
	assert.InDelta(t, 2.0/3.0, res.WellFormedRatio(), 1e-9)
}

func TestParse_TabRuns(t *testing.T) {
	content := header + "22\t\t42522501\trs3892097\tC\t\tT\t100\tPASS\tDP=1\n"

	res := Parse(content, Options{})
	require.Len(t, res.Variants, 1)
	assert.Equal(t, int64(42522501), res.Variants[0].Pos)
	assert.Equal(t, "T", res.Variants[0].Alt)
}

func TestParse_HeaderTabRuns(t *testing.T) {
	content := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\t\tINFO\tFORMAT\t\tNA12878\tNA12891\n" +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\tGT\t0/1\t1/1\n"

	res := Parse(content, Options{})
	assert.Equal(t, []string{"NA12878", "NA12891"}, res.SampleNames)
	require.Len(t, res.Variants, 1)
	assert.Len(t, res.Variants[0].Samples, len(res.SampleNames))
}

func TestParse_InfoField(t *testing.T) {
	content := header + "22\t1\trs1\tC\tT\t.\tPASS\tGENE=CYP2D6;DB;EQ=a=b;EMPTY=;;\n"

	res := Parse(content, Options{})
	require.Len(t, res.Variants, 1)

	info := res.Variants[0].Info
	assert.Equal(t, "CYP2D6", info["GENE"])
	assert.Equal(t, "true", info["DB"])
	assert.Equal(t, "a=b", info["EQ"])
	assert.Equal(t, "true", info["EMPTY"])
	assert.Len(t, info, 4)
}

func TestParse_InvalidPositionPreserved(t *testing.T) {
	content := header + "22\tabc\trs3892097\tC\tT\t100\tPASS\t.\n"

	res := Parse(content, Options{})
	require.Len(t, res.Variants, 1)
	assert.Equal(t, InvalidPos, res.Variants[0].Pos)
	assert.Equal(t, "abc", res.Variants[0].RawPos)
	assert.False(t, res.Variants[0].HasValidPos())
}

func TestParse_SamplesAndCRLF(t *testing.T) {
	content := "##fileformat=VCFv4.2\r\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA12878\r\n" +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\tGT:DP\t1/1:40\r\n"

	res := Parse(content, Options{})
	assert.Equal(t, []string{"NA12878"}, res.SampleNames)
	require.Len(t, res.Variants, 1)

	v := res.Variants[0]
	assert.Equal(t, "GT:DP", v.Format)
	assert.Equal(t, []string{"1/1:40"}, v.Samples)
	assert.Equal(t, "1/1", v.Genotype())
	assert.Equal(t, 2, v.AltDosage())
}

func TestParse_NoTrailingNewline(t *testing.T) {
	content := header + "22\t42522501\trs3892097\tC\tT\t100\tPASS\t."

	res := Parse(content, Options{})
	assert.Len(t, res.Variants, 1)
}

func TestParse_Idempotent(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\tDP=100\n" +
		"22\t42523943\trs1065852\tC\tT\n"

	opts := KeepChromosomes("22")
	assert.Equal(t, Parse(content, opts), Parse(content, opts))
}

func TestParser_Streaming(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\n" +
		"\n" +
		"22\t42523943\trs1065852\tC\tT\t100\tPASS\t.\n"

	p := NewParserFromReader(strings.NewReader(content), Options{})

	count := 0
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		count++
	}

	assert.Equal(t, 2, count)
	assert.Equal(t, 5, p.LineNumber())
	assert.Len(t, p.Header(), 2)
	assert.Empty(t, p.Warnings())
}

func TestOptions_Key(t *testing.T) {
	assert.Equal(t, "*", Options{}.Key())
	assert.Equal(t, "10,22", KeepChromosomes("chr22", "10").Key())
	assert.Equal(t, KeepChromosomes("22", "10").Key(), KeepChromosomes("10", "22").Key())
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	content := header + "22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\n"

	plain := filepath.Join(dir, "sample.vcf")
	require.NoError(t, os.WriteFile(plain, []byte(content), 0o644))

	got, err := ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	gzPath := filepath.Join(dir, "sample.vcf.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	got, err = ReadFile(gzPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadFile_MissingIsIOError(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.vcf"))
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, os.IsNotExist(ioErr.Err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

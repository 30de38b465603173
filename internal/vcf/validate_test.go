package vcf

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findBySeverity(errs []ValidationError, sev Severity) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

func TestValidate_EmptyFile(t *testing.T) {
	for _, content := range []string{"", "  \n\t\n"} {
		rep := Validate(content)
		assert.False(t, rep.IsValid)
		require.Len(t, rep.Errors, 1)
		assert.Equal(t, SeverityCritical, rep.Errors[0].Severity)
		assert.Equal(t, "VCF file is empty", rep.Errors[0].Message)
	}
}

func TestValidate_HeadersOnlyIsValid(t *testing.T) {
	rep := Validate(header)

	assert.True(t, rep.IsValid)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, SeverityWarning, rep.Errors[0].Severity)
	assert.Equal(t, TypeMissingData, rep.Errors[0].Type)
}

func TestValidate_MissingChromHeader(t *testing.T) {
	content := "##fileformat=VCFv4.2\n22\t42522501\trs3892097\tC\tT\t100\tPASS\tGENE=CYP2D6\n"

	rep := Validate(content)

	assert.False(t, rep.IsValid)
	crit := findBySeverity(rep.Errors, SeverityCritical)
	require.Len(t, crit, 1)
	assert.Contains(t, crit[0].Message, "column header")
}

func TestValidate_MissingFileFormat(t *testing.T) {
	content := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n22\t1\trs1\tC\tT\t.\tPASS\tRSID=rs1\n"

	rep := Validate(content)

	assert.False(t, rep.IsValid)
	crit := findBySeverity(rep.Errors, SeverityCritical)
	require.Len(t, crit, 1)
	assert.Contains(t, crit[0].Message, "##fileformat")
}

func TestValidate_UnexpectedVersion(t *testing.T) {
	content := "##fileformat=VCFv3.3\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n22\t1\trs1\tC\tT\t.\tPASS\tGENE=X\n"

	rep := Validate(content)

	assert.True(t, rep.IsValid)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "Unexpected VCF format version", rep.Errors[0].Message)
	assert.Contains(t, rep.Errors[0].Details, "VCFv3.3")
}

func TestValidate_ManyHeaderLines(t *testing.T) {
	var b strings.Builder
	b.WriteString("##fileformat=VCFv4.2\n")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "##contig=<ID=%d>\n", i)
	}
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	b.WriteString("22\t1\trs1\tC\tT\t.\tPASS\tGENE=CYP2D6\n")

	rep := Validate(b.String())
	assert.True(t, rep.IsValid)
	assert.Empty(t, rep.Errors)
}

func TestValidate_RecordChecks(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\tGENE=CYP2D6\n" + // line 3, clean
		"22\tabc\trs1\tC\tT\t100\tPASS\tGENE=CYP2D6\n" + // line 4, bad POS
		"22\t5\trs2\t.\tT\t100\tPASS\tGENE=CYP2D6\n" + // line 5, bad REF
		"22\t6\trs3\tC\t.\t100\tPASS\tGENE=CYP2D6\n" // line 6, missing ALT

	rep := Validate(content)
	assert.False(t, rep.IsValid)

	byLine := map[int]ValidationError{}
	for _, e := range rep.Errors {
		byLine[e.Line] = e
	}
	assert.NotContains(t, byLine, 3)
	assert.Equal(t, SeverityError, byLine[4].Severity)
	assert.Contains(t, byLine[4].Message, "Invalid position")
	assert.Equal(t, SeverityError, byLine[5].Severity)
	assert.Contains(t, byLine[5].Message, "reference allele")
	assert.Equal(t, SeverityWarning, byLine[6].Severity)
	assert.Contains(t, byLine[6].Message, "alternate allele")
}

func TestValidate_MissingAltAloneIsValid(t *testing.T) {
	content := header + "22\t6\trs3\tC\t.\t100\tPASS\tGENE=CYP2D6\n"

	rep := Validate(content)
	assert.True(t, rep.IsValid)
}

func TestValidate_MalformedLines(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\tGENE=CYP2D6\n" +
		"22\t42523943\trs1065852\tC\tT\t100\n" +
		"22\t42524947\trs16947\tG\tA\t100\tPASS\tGENE=CYP2D6\n" +
		"22\t42524948\n"

	rep := Validate(content)
	assert.False(t, rep.IsValid)

	errs := findBySeverity(rep.Errors, SeverityError)
	require.Len(t, errs, 2)
	assert.Equal(t, 4, errs[0].Line)
	assert.Equal(t, 6, errs[1].Line)

	last := rep.Errors[len(rep.Errors)-1]
	assert.Equal(t, SeverityWarning, last.Severity)
	assert.Equal(t, "2 malformed records found (50.00% of total)", last.Message)
}

func TestValidate_InfoTagWarningsCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "22\t%d\t.\tC\tT\t100\tPASS\tDP=10\n", 100+i)
	}

	rep := Validate(b.String())

	assert.True(t, rep.IsValid)
	assert.Len(t, rep.Errors, 5)
	for _, e := range rep.Errors {
		assert.Contains(t, e.Message, "Missing pharmacogenomic INFO tags")
	}
}

func TestHasPGxInfoTag(t *testing.T) {
	assert.True(t, hasPGxInfoTag("DP=1;GENE=CYP2D6"))
	assert.True(t, hasPGxInfoTag("STAR=*4"))
	assert.True(t, hasPGxInfoTag("DIPLOTYPE=*1/*4"))
	assert.True(t, hasPGxInfoTag("RSID=rs3892097"))
	assert.True(t, hasPGxInfoTag("RS=3892097"))
	assert.False(t, hasPGxInfoTag("DP=100;AF=0.5"))
}

func TestValidationReport_Err(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\tGENE=CYP2D6\n" +
		"22\t42523943\trs1065852\tC\tT\t100\n"

	rep := Validate(content)

	assert.NoError(t, rep.Err(SeverityCritical))

	err := rep.Err(SeverityError)
	require.Error(t, err)
	var vcfErr *VCFError
	require.True(t, errors.As(err, &vcfErr))
	assert.Equal(t, rep.Errors, vcfErr.Errors)
	assert.Contains(t, err.Error(), "1 blocking issue(s)")
}

func TestFormatMessages(t *testing.T) {
	msgs := FormatMessages([]ValidationError{
		{Severity: SeverityCritical, Message: "VCF file is empty"},
		{Severity: SeverityWarning, Message: "Unexpected VCF format version", Details: "Found: VCFv3"},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, "[CRITICAL] VCF file is empty", msgs[0])
	assert.Equal(t, "[WARNING] Unexpected VCF format version\nDetails: Found: VCFv3", msgs[1])
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity(" Error ")
	require.NoError(t, err)
	assert.Equal(t, SeverityError, sev)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}

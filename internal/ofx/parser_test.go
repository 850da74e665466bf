package ofx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>Info
</STATUS>
<DTSERVER>20260601120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>000111222
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260601
<DTEND>20260630
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260603
<TRNAMT>-42.15
<FITID>FIT-001
<NAME>ACME POWER BILL
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260605
<TRNAMT>1250.00
<FITID>FIT-002
<MEMO>PAYROLL DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1207.85
<DTASOF>20260630
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParseStatement(t *testing.T) {
	parser := NewParser()

	records, err := parser.ParseStatement(strings.NewReader(sampleStatement))
	require.NoError(t, err)
	require.Len(t, records, 2)

	debit := records[0]
	assert.Equal(t, "FIT-001", debit.ExternalID)
	assert.Equal(t, "000111222", debit.AccountID)
	assert.Equal(t, "ACME POWER BILL", debit.Description)
	assert.InDelta(t, -42.15, debit.Amount, 1e-9)
	assert.Equal(t, 2026, debit.Date.Year())
	assert.Equal(t, 3, debit.Date.Day())
	assert.Equal(t, "DEBIT", debit.BankCategory)

	// NAME is absent on the second entry, so the memo stands in.
	credit := records[1]
	assert.Equal(t, "FIT-002", credit.ExternalID)
	assert.Equal(t, "PAYROLL DEPOSIT", credit.Description)
	assert.InDelta(t, 1250.00, credit.Amount, 1e-9)
	assert.Equal(t, "CREDIT", credit.BankCategory)
}

func TestParseStatementInvalid(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseStatement(strings.NewReader("not an ofx document"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse OFX statement")
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "uppercases mixed-case severity",
			input: "<SEVERITY>Info</SEVERITY>",
			want:  "<SEVERITY>INFO</SEVERITY>",
		},
		{
			name:  "closes dangling tag",
			input: "<STMTTRN\n",
			want:  "<STMTTRN>\n",
		},
		{
			name:  "strips leading whitespace",
			input: "\n\n  OFXHEADER:100",
			want:  "OFXHEADER:100",
		},
		{
			name:  "well-formed input untouched",
			input: "<SEVERITY>ERROR</SEVERITY>",
			want:  "<SEVERITY>ERROR</SEVERITY>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.preprocessOFX(tt.input))
		})
	}
}

package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tincli/pkg/contracts/domain"
)

type fakeIndex map[LookupKey]bool

func (f fakeIndex) Contains(name, tin string) bool {
	return f[NewLookupKey(name, tin)]
}

func TestMapQcCheck(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"qc_check_1", "1", true},
		{"qc_check_2", "1", true},
		{"qc_check_3", "2", true},
		{"qc_check_4", "3", true},
		{"qc_check_5", "", false},
		{"qc_check_8", "", false},
		{"QC_CHECK_1", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, ok := MapQcCheck(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestNormalizeTinType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"SSN", "2"},
		{"EIN", "EIN"},
		{"ssn", "ssn"},
		{"1", "1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTinType(tt.input))
		})
	}
}

func TestApplyRules(t *testing.T) {
	index := fakeIndex{NewLookupKey("JANE DOE", "123456789"): true}

	tests := []struct {
		name        string
		row         domain.FlagRow
		expectCode  string
		expectKept  bool
		expectMatch bool
	}{
		{"mapped code", domain.FlagRow{QcCheck: "qc_check_3"}, "2", true, false},
		{"qc_check_8 match", domain.FlagRow{QcCheck: "qc_check_8", Name: "Jane Doe", Tin: "123456789"}, "3", true, true},
		{"qc_check_8 no match", domain.FlagRow{QcCheck: "qc_check_8", Name: "John Doe", Tin: "123456789"}, "", false, false},
		{"unmapped", domain.FlagRow{QcCheck: "qc_check_6", Name: "Jane Doe", Tin: "123456789"}, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, matched := ApplyRules(tt.row, "20250814", index)

			assert.Equal(t, tt.expectMatch, matched)
			assert.Equal(t, tt.expectKept, out.HasCode())
			assert.Equal(t, "20250814", out.TinMatchDate)
			if tt.expectKept {
				require.NotNil(t, out.ErrorCodes)
				assert.Equal(t, tt.expectCode, *out.ErrorCodes)
			}
		})
	}
}

func TestApplyRules_DoesNotMutateInput(t *testing.T) {
	stale := "9"
	row := domain.FlagRow{QcCheck: "qc_check_1", TinMatchDate: "old", ErrorCodes: &stale}

	out, _ := ApplyRules(row, "20250814", nil)

	assert.Equal(t, "old", row.TinMatchDate)
	assert.Equal(t, "9", *row.ErrorCodes)
	assert.Equal(t, "1", *out.ErrorCodes)
}

func TestApplyRules_NilIndex(t *testing.T) {
	out, matched := ApplyRules(domain.FlagRow{QcCheck: "qc_check_8", Name: "x", Tin: "1"}, "20250814", nil)

	assert.False(t, matched)
	assert.False(t, out.HasCode())
}

func TestProjectFlagRow(t *testing.T) {
	row := domain.FlagRow{
		QcCheck:       "qc_check_1",
		TinType:       "SSN",
		Tin:           "111",
		Name:          "Ann",
		AccountNumber: "A1",
		TinMatchDate:  "20250814",
		Fields:        map[string]string{"notes": "x"},
	}.WithCode("1")

	assert.Equal(t, domain.PrimaryRow{
		TinType:       "2",
		Tin:           "111",
		Name:          "Ann",
		AccountNumber: "A1",
		ErrorCodes:    "1",
		TinMatchDate:  "20250814",
	}, ProjectFlagRow(row))
}

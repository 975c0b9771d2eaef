package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInputParser_LoadFromFile(t *testing.T) {
	parser := NewInputParser()

	params, err := parser.LoadFromFile(filepath.Join("testdata", "minimal.yaml"))
	require.NoError(t, err, "Should load minimal configuration")

	assert.Equal(t, 2025, params.StartYear)
	assert.Equal(t, "INR", params.DomesticCurrency, "Should default domestic currency")
	assert.Equal(t, "USD", params.ForeignCurrency, "Should default foreign currency")
	assert.Equal(t, domain.DefaultCutoverYear, params.Rental.CutoverYear, "Should default cutover year")
	assert.Equal(t, []string{"fd_domestic", "equity_foreign"}, params.WithdrawalOrder, "Should derive order from defaults")
	assert.True(t, params.Buckets[1].Balance.Equal(decimal.NewFromInt(25000)))
	require.NotNil(t, params.LockedBucket())
	assert.Equal(t, 2030, *params.LockedBucket().LockUntilYear)
	assert.True(t, params.Reinvestment.Annual().Equal(decimal.NewFromInt(120000)))

	require.Len(t, params.OneTimeEvents.Events, 1, "Should keep the valid event")
	assert.Len(t, params.OneTimeEvents.Skipped, 1, "Should skip the event without a year")
}

func TestInputParser_LoadFromFileMissing(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestInputParser_LoadFromBytesErrors(t *testing.T) {
	parser := NewInputParser()
	base, err := os.ReadFile(filepath.Join("testdata", "minimal.yaml"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "empty document"},
		{"malformed", "start_year: [", "failed to parse YAML"},
		{"unknown key", string(base) + "\nsurprise: 1\n", "surprise"},
		{"same currencies", string(base) + "\ndomestic_currency: USD\n", "must differ"},
		{"lowercase currency", string(base) + "\nforeign_currency: usd\n", "three-letter"},
		{"invalid amount", "start_year: 2025\nbuffer: lots\n", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.LoadFromBytes([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInputParser_ValidationFailure(t *testing.T) {
	params := CreateExampleConfiguration()
	params.EndAge = params.StartAge - 1

	data, err := yaml.Marshal(params)
	require.NoError(t, err)

	_, err = NewInputParser().LoadFromBytes(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "end age")
}

func TestInputParser_NoUsableOrder(t *testing.T) {
	params := &domain.ParameterSet{Buckets: []domain.AssetBucket{{Name: "custom", Currency: domain.Domestic}}}
	parser := NewInputParser()
	parser.ApplyDefaults(params)

	err := parser.ValidateConfiguration(params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "withdrawal order is empty")
}

func TestCreateExampleConfiguration(t *testing.T) {
	params := CreateExampleConfiguration()

	require.NoError(t, NewInputParser().ValidateConfiguration(params), "Example configuration should be valid")
	assert.Len(t, params.Buckets, 8)
	assert.Len(t, params.OneTimeEvents.Events, 9)
	assert.Equal(t, "locked_domestic", params.LockedBucket().Name)
}

func TestCreateExampleConfiguration_RoundTrip(t *testing.T) {
	original := CreateExampleConfiguration()
	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	loaded, err := NewInputParser().LoadFromBytes(data)
	require.NoError(t, err, "Saved example should load back")

	assert.Equal(t, original.WithdrawalOrder, loaded.WithdrawalOrder)
	assert.True(t, original.Buffer.Equal(loaded.Buffer))
	assert.Len(t, loaded.OneTimeEvents.Events, len(original.OneTimeEvents.Events))
	assert.True(t, loaded.Reinvestment.Annual().Equal(original.Reinvestment.Annual()))
}

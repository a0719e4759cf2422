package terminal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/de-tools/pricelist-atlas/pkg/client"
	"github.com/de-tools/pricelist-atlas/pkg/config"
	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/runtime/terminal/commands"
	pricesync "github.com/de-tools/pricelist-atlas/pkg/services/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) options(args mock.Arguments) ([]api.Option, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.Option), args.Error(1)
}

func (m *mockAPI) ServiceOptions(ctx context.Context) ([]api.Option, error) {
	return m.options(m.Called(ctx))
}

func (m *mockAPI) VersionOptions(ctx context.Context) ([]api.Option, error) {
	return m.options(m.Called(ctx))
}

func (m *mockAPI) RegionOptions(ctx context.Context) ([]api.Option, error) {
	return m.options(m.Called(ctx))
}

func (m *mockAPI) ProductOptions(ctx context.Context, regions []string) ([]api.Option, error) {
	return m.options(m.Called(ctx, regions))
}

func (m *mockAPI) Durations(ctx context.Context) ([]api.Option, error) {
	return m.options(m.Called(ctx))
}

func (m *mockAPI) PricingTable(ctx context.Context, q client.TableQuery) (*api.PricingTable, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.PricingTable), args.Error(1)
}

func (m *mockAPI) Chat(ctx context.Context, messages []api.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) Sync(ctx context.Context, opts pricesync.Options) (*pricesync.Report, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricesync.Report), args.Error(1)
}

func run(t *testing.T, m *mockAPI, sync commands.SyncFactory, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	var gotURL string
	cli := NewCLI(Options{
		NewAPI: func(baseURL string) commands.API {
			gotURL = baseURL
			return m
		},
		Sync:   sync,
		Output: &out,
	})
	cli.rootCmd.SetIn(strings.NewReader(stdin))
	cli.SetArgs(args)
	err := cli.Execute()
	if gotURL != "" {
		assert.Equal(t, client.DefaultBaseURL, gotURL)
	}
	return out.String(), err
}

func TestCLI_Options(t *testing.T) {
	m := new(mockAPI)
	m.On("Durations", mock.Anything).Return([]api.Option{{Label: "On-Demand", Value: "OnDemand"}}, nil)
	m.On("ServiceOptions", mock.Anything).Return(nil, errors.New("connection refused"))
	m.On("ProductOptions", mock.Anything, []string{"us-east-1", "eu-west-1"}).
		Return([]api.Option{{Label: "Requests", Value: "Requests"}}, nil)

	out, err := run(t, m, nil, "", "durations")
	require.NoError(t, err)
	assert.Equal(t, "On-Demand (OnDemand)\n", out)

	out, err = run(t, m, nil, "", "services")
	require.NoError(t, err)
	assert.Equal(t, "Failed to load services\n", out)

	out, err = run(t, m, nil, "", "products", "--region", "us-east-1,eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "Requests\n", out)
}

func TestCLI_Table(t *testing.T) {
	m := new(mockAPI)
	m.On("RegionOptions", mock.Anything).Return([]api.Option{
		{Label: "eu-west-1", Value: "eu-west-1"},
		{Label: "us-east-1", Value: "us-east-1"},
	}, nil)
	m.On("PricingTable", mock.Anything, client.TableQuery{
		Version:  "20250301000000",
		Regions:  []string{"eu-west-1", "us-east-1"},
		Products: []string{"Requests"},
		Duration: "OnDemand",
		Sort:     "minPrice_asc",
	}).Return(&api.PricingTable{
		State:        "ready",
		Rows:         []api.PricingRow{{UsageType: "Requests", PriceRange: "0.000004"}},
		VersionBegin: "2025-03-01",
		VersionEnd:   "N/A",
	}, nil)

	out, err := run(t, m, nil, "", "table",
		"--service", "AmazonVerifiedPermissions",
		"--version", "20250301000000",
		"--region", "__ALL__",
		"--product", "Requests",
		"--duration", "OnDemand",
		"--discounts",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "| Requests ")
	assert.Contains(t, out, "No discounts or reserved pricing available for AmazonVerifiedPermissions.")
	m.AssertExpectations(t)
}

func TestCLI_TableIncompleteSelection(t *testing.T) {
	_, err := run(t, new(mockAPI), nil, "", "table", "--service", "AmazonVerifiedPermissions")
	assert.ErrorIs(t, err, commands.ErrIncompleteSelection)

	_, err = run(t, new(mockAPI), nil, "", "table", "--sort", "price_up")
	assert.Error(t, err)
}

func TestCLI_TableFetchFailure(t *testing.T) {
	m := new(mockAPI)
	m.On("PricingTable", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	out, err := run(t, m, nil, "", "table",
		"--service", "svc", "--version", "v", "--region", "us-east-1",
		"--product", "Requests", "--duration", "OnDemand")
	require.NoError(t, err)
	assert.Equal(t, "Failed to load pricing data.\n", out)
}

func TestCLI_Chat(t *testing.T) {
	m := new(mockAPI)
	m.On("Chat", mock.Anything, []api.ChatMessage{
		{Role: "bot", Content: commands.ChatGreeting},
		{Role: "user", Content: "how much is a request"},
	}).Return("About $0.000004.", nil)

	out, err := run(t, m, nil, "", "chat", "how", "much", "is", "a", "request")
	require.NoError(t, err)
	assert.Equal(t, "About $0.000004.\n", out)
}

func TestCLI_ChatNeverFails(t *testing.T) {
	m := new(mockAPI)
	m.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("500")).Once()
	m.On("Chat", mock.Anything, mock.Anything).Return("", nil).Once()

	out, err := run(t, m, nil, "first\n\nsecond\n", "chat")
	require.NoError(t, err)
	assert.Equal(t, commands.ChatGreeting+"\n"+commands.ChatError+"\n"+commands.ChatNoResponse+"\n", out)

	last := m.Calls[1].Arguments.Get(1).([]api.ChatMessage)
	assert.Len(t, last, 4)
	assert.Equal(t, commands.ChatError, last[2].Content)
}

func TestCLI_Sync(t *testing.T) {
	syncer := new(mockSyncer)
	syncer.On("Sync", mock.Anything, pricesync.Options{
		BaseURL:     "https://pricing.us-east-1.amazonaws.com",
		OfferCode:   "AmazonVerifiedPermissions",
		Family:      "verifiedpermissions",
		Regions:     []string{"us-east-1"},
		Concurrency: 4,
	}).Return(&pricesync.Report{RunID: "run-1", Files: []string{"index.json"}}, nil)

	var withAWS bool
	factory := func(ctx context.Context, configPath string, aws bool) (commands.Syncer, *config.Config, error) {
		withAWS = aws
		cfg, err := config.LoadConfig(configPath)
		return syncer, cfg, err
	}

	out, err := run(t, new(mockAPI), factory, "", "sync", "--region", "us-east-1")
	require.NoError(t, err)
	assert.True(t, withAWS)
	assert.Contains(t, out, "Sync run-1 completed")
	syncer.AssertExpectations(t)
}

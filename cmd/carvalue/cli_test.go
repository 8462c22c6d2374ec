package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carvalue/internal/config"
	"carvalue/internal/model"
	"carvalue/internal/preferences"
	"carvalue/internal/repository"
	"carvalue/internal/service"
)

// setupCLI points the globals at an offline configuration and a temp prefs file
func setupCLI(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	cfg = &config.Config{
		Valuation: config.ValuationConfig{Provider: "heuristic", Currency: "Indian Rupees (₹)"},
		Chat:      config.ChatConfig{SessionTTL: time.Hour},
		Theme:     config.ThemeConfig{DarkMode: true},
	}
	prefsPath = filepath.Join(t.TempDir(), "prefs.bolt")
	plain = true
	t.Cleanup(func() {
		prefsPath = ""
		plain = false
		estimateReq = model.EstimateRequest{}
		estimateJSON = false
	})
}

func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetContext(context.Background())
	return cmd, &out, &errOut
}

func TestThemeCmd(t *testing.T) {
	setupCLI(t)

	cmd, out, _ := newTestCmd()
	require.NoError(t, runTheme(cmd, nil))
	assert.Equal(t, "Theme: dark\n", out.String())

	out.Reset()
	require.NoError(t, runTheme(cmd, []string{"toggle"}))
	assert.Equal(t, "Theme: light\n", out.String())

	// persisted across store instances
	dark, err := openPrefs().DarkMode()
	require.NoError(t, err)
	assert.False(t, dark)

	out.Reset()
	require.NoError(t, runTheme(cmd, []string{"dark"}))
	assert.Equal(t, "Theme: dark\n", out.String())
}

func TestEstimateCmd(t *testing.T) {
	setupCLI(t)
	estimateReq = model.EstimateRequest{Make: "Toyota", Model: "Innova", Year: "2020", Mileage: "50000", Condition: "good"}

	cmd, out, _ := newTestCmd()
	require.NoError(t, runEstimate(cmd, nil))
	assert.Contains(t, out.String(), "# Valuation: 2020 Toyota Innova")
	assert.Contains(t, out.String(), "## Estimated Value")
}

func TestEstimateCmd_JSON(t *testing.T) {
	setupCLI(t)
	estimateReq = model.EstimateRequest{Make: "Honda", Model: "City", Year: "2018", Mileage: "72,000"}
	estimateJSON = true

	cmd, out, _ := newTestCmd()
	require.NoError(t, runEstimate(cmd, nil))

	var resp model.EstimateResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "heuristic", resp.Provider)
	assert.Equal(t, "Honda", resp.Vehicle.Make)
	assert.Equal(t, model.ConditionGood, resp.Vehicle.Condition)
}

func TestEstimateCmd_InvalidInput(t *testing.T) {
	setupCLI(t)
	estimateReq = model.EstimateRequest{Model: "Innova", Year: "1800", Mileage: "50000"}

	cmd, out, errOut := newTestCmd()
	err := runEstimate(cmd, nil)
	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "--make: Make is required")
	assert.Contains(t, errOut.String(), "--year: Year must be between 1950")
}

func newTestConversations() *service.ConversationService {
	valuations := service.NewValuationService(service.NewHeuristicEstimator(), nil, logger)
	return service.NewConversationService(
		repository.NewSessionStore(time.Hour),
		valuations,
		service.ConversationConfig{DefaultDarkMode: true},
		logger,
	)
}

func TestChatLoop(t *testing.T) {
	setupCLI(t)
	prefs := preferences.NewMemoryStore(true)

	in := strings.NewReader(strings.Join([]string{
		"I drive a Toyota",
		"",
		"Innova 2020, 50000 km, good condition",
		"/theme",
		"/quit",
		"never read",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, chatLoop(context.Background(), newTestConversations(), prefs, in, &out))

	text := out.String()
	assert.Contains(t, text, service.GreetingMessage)
	assert.Contains(t, text, "Thanks for providing these details:\n\nMake: Toyota")
	assert.Contains(t, text, service.GeneratingMessage)
	assert.Contains(t, text, "# Valuation: 2020 Toyota Innova")
	assert.Contains(t, text, "Theme: light")

	dark, err := prefs.DarkMode()
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestChatLoop_ResetAndEOF(t *testing.T) {
	setupCLI(t)

	in := strings.NewReader("Toyota Innova\n/reset\n/examples\n")
	var out bytes.Buffer

	require.NoError(t, chatLoop(context.Background(), newTestConversations(), preferences.NewMemoryStore(false), in, &out))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, service.GreetingMessage))
	assert.Contains(t, text, "Toyota Innova: Toyota Innova 2024, 50000 km, good condition")
}

func TestRenderMarkdown(t *testing.T) {
	for _, dark := range []bool{true, false} {
		rendered := renderMarkdown("Innova", dark)
		assert.Contains(t, rendered, "Innova")
	}
	assert.True(t, looksLikeMarkdown("## Estimated Value"))
	assert.False(t, looksLikeMarkdown("Please tell me the year of your car."))
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/logger"
	"github.com/carverauto/ecgprobe/pkg/models"
)

var sampleHeader = []byte{
	0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC,
	0x14, 0x19, 0x0B, 0x1D, 0x0E, 0x1E,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

func sampleTime() time.Time {
	return time.Date(2025, time.November, 29, 14, 30, 0, 0, time.UTC)
}

func writeHeader(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ecgheader.DefaultHeaderFile)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func newRuntime(t *testing.T, now time.Time) (*Runtime, *bytes.Buffer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	clock := ecgheader.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	var out bytes.Buffer

	return &Runtime{
		Stdout:    &out,
		LogWriter: &bytes.Buffer{},
		Clock:     clock,
		Logger:    logger.NewNopLogger(),
	}, &out
}

func decodeArgs(t *testing.T, args ...string) *CmdConfig {
	t.Helper()

	cfg, err := ParseFlags(append([]string{subCmdDecode}, args...))
	require.NoError(t, err)

	return cfg
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		validate func(t *testing.T, cfg *CmdConfig)
	}{
		{
			name: "no arguments shows help",
			args: nil,
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
			},
		},
		{
			name: "help command",
			args: []string{"--help"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
				assert.Equal(t, subCmdHelp, cfg.SubCmd)
			},
		},
		{
			name: "help for a command",
			args: []string{"help", "analyze"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
				assert.Equal(t, subCmdAnalyze, cfg.SubCmd)
			},
		},
		{
			name: "version",
			args: []string{"version"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, subCmdVersion, cfg.SubCmd)
				assert.False(t, cfg.Help)
			},
		},
		{
			name: "decode flags",
			args: []string{"decode", "-file", "/tmp/ECG.BIN", "-layout", "offset2000", "-json",
				"-config", "probe.json", "-nats-url", "nats://127.0.0.1:4222", "-subject", "ecg.a"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.Equal(t, "/tmp/ECG.BIN", cfg.HeaderFile)
				assert.Equal(t, "offset2000", cfg.Layout)
				assert.True(t, cfg.JSON)
				assert.Equal(t, "probe.json", cfg.ConfigFile)
				assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
				assert.Equal(t, "ecg.a", cfg.Subject)
			},
		},
		{
			name: "decode help",
			args: []string{"decode", "-h"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.Help)
				assert.Equal(t, subCmdDecode, cfg.SubCmd)
			},
		},
		{
			name: "analyze year flag",
			args: []string{"analyze", "-year", "2025", "-json"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.YearSet)
				assert.Equal(t, 2025, cfg.Year)
				assert.True(t, cfg.JSON)
			},
		},
		{
			name: "analyze year zero is set",
			args: []string{"analyze", "-year", "0"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.YearSet)
				assert.Equal(t, 0, cfg.Year)
			},
		},
		{
			name: "analyze positional year",
			args: []string{"analyze", "1999"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.True(t, cfg.YearSet)
				assert.Equal(t, 1999, cfg.Year)
			},
		},
		{
			name: "analyze without year",
			args: []string{"analyze"},
			validate: func(t *testing.T, cfg *CmdConfig) {
				t.Helper()
				assert.False(t, cfg.YearSet)
			},
		},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: errUnknownSubcommand},
		{name: "unknown layout", args: []string{"decode", "-layout", "bcd"}, wantErr: ecgheader.ErrUnknownLayout},
		{name: "unknown flag", args: []string{"decode", "-bogus"}, wantErr: ErrUsage},
		{name: "decode positional", args: []string{"decode", "ECG.BIN"}, wantErr: errTooManyArgs},
		{name: "analyze bad year", args: []string{"analyze", "twenty"}, wantErr: errInvalidYear},
		{name: "analyze two years", args: []string{"analyze", "-year", "1", "2"}, wantErr: errTooManyArgs},
		{name: "analyze bad flag value", args: []string{"analyze", "-year", "x"}, wantErr: ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := ParseFlags(tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, ErrUsage)

				return
			}

			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestRunDecodeText(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeHeader(t, sampleHeader)
	rt, out := newRuntime(t, sampleTime().Add(time.Minute))

	err := Run(context.Background(), decodeArgs(t, "-file", path), rt)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "12 34 56 78 9A BC 14 19 0B 1D 0E 1E 00")
	assert.Contains(t, text, "byte 7: 0x14 = 20 (year, high two digits)")
	assert.Contains(t, text, "byte 12: 0x1E = 30 (minute)")
	assert.Contains(t, text, "2025-11-29 14:30")
	assert.Contains(t, text, "2025-11-29 14:31")
	assert.Contains(t, text, "0x14190B1D0E1E")
	assert.Contains(t, text, "60 seconds")
	assert.Contains(t, text, verdictOK)
	assert.NotContains(t, text, "\x1b[", "reports written to a buffer carry no ANSI codes")
}

func TestRunDecodeImplausibleIsNotAnError(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeHeader(t, sampleHeader)
	rt, out := newRuntime(t, sampleTime().Add(2*time.Hour))

	require.NoError(t, Run(context.Background(), decodeArgs(t, "-file", path), rt))
	assert.Contains(t, out.String(), "7200 seconds")
	assert.Contains(t, out.String(), verdictSuspect)
}

func decodeJSONOutput(t *testing.T, out *bytes.Buffer) decodeJSON {
	t.Helper()

	var report decodeJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	return report
}

func TestRunDecodeJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeHeader(t, sampleHeader)
	rt, out := newRuntime(t, sampleTime().Add(30*time.Second))

	require.NoError(t, Run(context.Background(), decodeArgs(t, "-file", path, "-json"), rt))

	report := decodeJSONOutput(t, out)
	assert.Equal(t, path, report.Source)
	assert.Equal(t, "century", report.Layout)
	assert.Equal(t, "123456789ABC", report.SerialNumber)
	assert.Equal(t, "0x14190B1D0E1E", report.TimestampHex)
	assert.Equal(t, 2025, report.FullYear)
	assert.True(t, report.Valid)
	assert.True(t, report.Plausible)
	assert.Nil(t, report.Error)
	require.NotNil(t, report.Timestamp)
	assert.True(t, sampleTime().Equal(*report.Timestamp))
	require.NotNil(t, report.DifferenceSeconds)
	assert.InDelta(t, 30.0, *report.DifferenceSeconds, 1e-9)
	require.Len(t, report.Fields, 6)
	assert.Equal(t, fieldJSON{Byte: 9, Name: "month", Label: "month", Value: 11, Hex: "0x0B"}, report.Fields[2])
}

func TestRunDecodeMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	rt, out := newRuntime(t, sampleTime())
	path := filepath.Join(t.TempDir(), ecgheader.DefaultHeaderFile)

	err := Run(context.Background(), decodeArgs(t, "-file", path), rt)
	require.ErrorIs(t, err, ecgheader.ErrSourceUnavailable)
	assert.NotErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "⚠ header source unavailable")

	out.Reset()
	err = Run(context.Background(), decodeArgs(t, "-file", path, "-json"), rt)
	require.ErrorIs(t, err, ecgheader.ErrSourceUnavailable)

	report := decodeJSONOutput(t, out)
	require.NotNil(t, report.Error)
	assert.Equal(t, errorKindSource, report.Error.Kind)
	assert.False(t, report.Valid)
}

func TestRunDecodeTruncatedFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeHeader(t, sampleHeader[:8])
	rt, out := newRuntime(t, sampleTime())

	err := Run(context.Background(), decodeArgs(t, "-file", path, "-json"), rt)
	require.ErrorIs(t, err, ecgheader.ErrInsufficientData)

	report := decodeJSONOutput(t, out)
	assert.Equal(t, "123456789ABC1419", report.HeaderHex)
	require.NotNil(t, report.Error)
	assert.Equal(t, errorKindInsufficient, report.Error.Kind)
	assert.Empty(t, report.SerialNumber)

	out.Reset()
	err = Run(context.Background(), decodeArgs(t, "-file", path), rt)
	require.ErrorIs(t, err, ecgheader.ErrInsufficientData)
	assert.Contains(t, out.String(), "SN (bytes 1-6)")
	assert.Contains(t, out.String(), "⚠ insufficient header data")
}

func TestRunDecodeInvalidMonth(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	header := append([]byte(nil), sampleHeader...)
	header[8] = 13
	path := writeHeader(t, header)
	rt, out := newRuntime(t, sampleTime())

	err := Run(context.Background(), decodeArgs(t, "-file", path, "-json"), rt)

	var calErr *ecgheader.CalendarError
	require.ErrorAs(t, err, &calErr)
	assert.Equal(t, ecgheader.FieldMonth, calErr.Field)

	report := decodeJSONOutput(t, out)
	assert.False(t, report.Valid)
	assert.Equal(t, 2025, report.FullYear)
	assert.Nil(t, report.Timestamp)
	require.NotNil(t, report.Error)
	assert.Equal(t, errorKindCalendar, report.Error.Kind)
	assert.Equal(t, "month", report.Error.Field)
	require.NotNil(t, report.Error.Value)
	assert.Equal(t, 13, *report.Error.Value)
	assert.Equal(t, 1, *report.Error.Min)
	assert.Equal(t, 12, *report.Error.Max)

	out.Reset()
	require.Error(t, Run(context.Background(), decodeArgs(t, "-file", path), rt))
	assert.Contains(t, out.String(), "byte 9: 0x0D = 13 (month)")
	assert.Contains(t, out.String(), "⚠ Invalid time value: invalid calendar value: month 13 out of range [1, 12]")
	assert.NotContains(t, out.String(), "Decoded time")
}

func TestRunDecodeOffsetYearLayout(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	header := []byte{0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0x18, 0x01, 0x0F, 0x0E, 0x1E, 0x2D}
	path := writeHeader(t, header)
	now := time.Date(2024, time.January, 15, 14, 40, 45, 0, time.UTC)
	rt, out := newRuntime(t, now)

	require.NoError(t, Run(context.Background(), decodeArgs(t, "-file", path, "-layout", "offset2000"), rt))
	assert.Contains(t, out.String(), "Fields (layout offset2000)")
	assert.Contains(t, out.String(), "byte 7: 0x18 = 24 (year since 2000)")
	assert.Contains(t, out.String(), "2024-01-15 14:30:45")
	assert.Contains(t, out.String(), "600 seconds")
	assert.Contains(t, out.String(), verdictOK)
}

func TestRunDecodeWithConfigFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeHeader(t, sampleHeader)
	configPath := filepath.Join(t.TempDir(), "ecgprobe.json")
	content := `{"header_file":"` + path + `","layout":"century","logging":{"level":"debug"}}`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	rt, out := newRuntime(t, sampleTime())

	var logs bytes.Buffer
	rt.LogWriter = &logs

	require.NoError(t, Run(context.Background(), decodeArgs(t, "-config", configPath, "-json"), rt))
	assert.True(t, decodeJSONOutput(t, out).Plausible)
	assert.Contains(t, logs.String(), `"component":"decoder"`)
	assert.Contains(t, logs.String(), `"serial_number":"123456789ABC"`)
}

func TestRunDecodeInvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	configPath := filepath.Join(t.TempDir(), "ecgprobe.json")
	require.NoError(t, os.WriteFile(configPath,
		[]byte(`{"layout":"bcd","events":{"enabled":true}}`), 0o600))

	rt, _ := newRuntime(t, sampleTime())

	err := Run(context.Background(), decodeArgs(t, "-config", configPath), rt)
	require.ErrorIs(t, err, ecgheader.ErrUnknownLayout)
	require.ErrorContains(t, err, "nats_url")
}

func TestRunDecodeFromEnv(t *testing.T) {
	path := writeHeader(t, sampleHeader)

	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "")
	t.Setenv("ECGPROBE_CONFIG_JSON", "")
	t.Setenv("ECGPROBE_HEADER_FILE", path)
	t.Setenv("ECGPROBE_LAYOUT", "century")

	rt, out := newRuntime(t, sampleTime())

	require.NoError(t, Run(context.Background(), decodeArgs(t, "-json"), rt))
	assert.Equal(t, path, decodeJSONOutput(t, out).Source)
}

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	t.Cleanup(srv.Shutdown)

	return srv
}

func TestRunDecodePublishesEvent(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	srv := runNATSServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	sub, err := nc.SubscribeSync("ecgprobe.ward.a")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	path := writeHeader(t, sampleHeader)
	rt, _ := newRuntime(t, sampleTime().Add(5*time.Minute))

	cfg := decodeArgs(t, "-file", path, "-json", "-nats-url", srv.ClientURL(), "-subject", "ecgprobe.ward.a")
	require.NoError(t, Run(context.Background(), cfg, rt))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var event struct {
		models.CloudEvent
		Data models.HeaderDecodedEventData `json:"data"`
	}

	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, models.HeaderDecodedEventType, event.Type)
	assert.NotEmpty(t, event.Data.RunID)
	assert.Equal(t, "123456789ABC", event.Data.SerialNumber)
	assert.Equal(t, path, event.Data.Source)
	assert.True(t, event.Data.Plausible)
	assert.True(t, sampleTime().Add(5*time.Minute).Equal(event.Data.ReferenceTime))
	require.NotNil(t, event.Time)
	assert.True(t, sampleTime().Add(5*time.Minute).Equal(*event.Time))
	require.NotNil(t, event.Data.DifferenceSeconds)
	assert.InDelta(t, 300.0, *event.Data.DifferenceSeconds, 1e-9)
	assert.Empty(t, event.Data.Error)
}

func TestRunDecodePublishFailureKeepsOutcome(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeHeader(t, sampleHeader)
	rt, out := newRuntime(t, sampleTime())

	cfg := decodeArgs(t, "-file", path, "-nats-url", "nats://127.0.0.1:1")
	require.NoError(t, Run(context.Background(), cfg, rt))
	assert.Contains(t, out.String(), verdictOK)
}

func TestRunAnalyze(t *testing.T) {
	t.Parallel()

	rt, out := newRuntime(t, sampleTime())

	require.NoError(t, Run(context.Background(), &CmdConfig{SubCmd: subCmdAnalyze, Year: 2025, YearSet: true}, rt))
	assert.Contains(t, out.String(), "233 (0xE9)")
	assert.Contains(t, out.String(), "2233")
	assert.Contains(t, out.String(), "2133")
	assert.Contains(t, out.String(), "0x1419")

	out.Reset()
	require.NoError(t, Run(context.Background(),
		&CmdConfig{SubCmd: subCmdAnalyze, Year: 2025, YearSet: true, JSON: true}, rt))

	var analysis analysisJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &analysis))
	assert.Equal(t, uint8(0xE9), analysis.TruncatedByte)
	assert.Equal(t, [2]int{2233, 2133}, analysis.Candidates)
	assert.Equal(t, "0x1419", analysis.SplitHex)
	assert.True(t, analysis.Corrupted)
}

func TestRunAnalyzeJSONNeedsYear(t *testing.T) {
	t.Parallel()

	rt, _ := newRuntime(t, sampleTime())

	err := Run(context.Background(), &CmdConfig{SubCmd: subCmdAnalyze, JSON: true}, rt)
	require.ErrorIs(t, err, ErrUsage)
	require.ErrorIs(t, err, errYearRequired)
}

func TestRunVersionAndHelp(t *testing.T) {
	t.Parallel()

	rt, out := newRuntime(t, sampleTime())

	require.NoError(t, Run(context.Background(), &CmdConfig{SubCmd: subCmdVersion}, rt))
	assert.Contains(t, out.String(), "ecgprobe dev (build: dev)")

	out.Reset()
	require.NoError(t, Run(context.Background(), &CmdConfig{Help: true}, rt))
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "-nats-url")
	assert.Contains(t, out.String(), "-year")

	out.Reset()
	require.NoError(t, Run(context.Background(), &CmdConfig{Help: true, SubCmd: subCmdAnalyze}, rt))
	assert.Contains(t, out.String(), "Options for analyze")
	assert.NotContains(t, out.String(), "Options for decode")

	err := Run(context.Background(), &CmdConfig{SubCmd: "nope"}, rt)
	require.ErrorIs(t, err, ErrUsage)
}

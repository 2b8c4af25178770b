package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerShowsStages(t *testing.T) {
	var buf bytes.Buffer
	sp := startSpinner(context.Background(), &buf, "Building treemap from 4 rows by team › service...")
	time.Sleep(3 * spinnerInterval)
	sp.stage("Rendering html, dot...")
	time.Sleep(3 * spinnerInterval)
	sp.stop()

	out := buf.String()
	for _, want := range []string{"Building treemap from 4 rows by team › service...", "Rendering html, dot..."} {
		if !strings.Contains(out, want) {
			t.Errorf("spinner output missing %q:\n%q", want, out)
		}
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should clear its line on stop, got %q", out)
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	sp := startSpinner(ctx, &buf, "Loading costs.csv...")
	cancel()

	select {
	case <-sp.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context ended")
	}
	sp.stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	sp := startSpinner(context.Background(), &buf, "Loading costs.csv...")
	sp.stop()
	sp.stop()
	sp.fail("Build failed")
}

func TestSpinnerQuietWhenStoppedEarly(t *testing.T) {
	var buf bytes.Buffer
	sp := startSpinner(context.Background(), &buf, "Loading costs.csv...")
	sp.stop()
	if buf.Len() != 0 {
		t.Errorf("spinner stopped before its first frame wrote %q", buf.String())
	}
}

func TestStageMessages(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{loadStage("costs.csv"), "Loading costs.csv..."},
		{buildStage(4, []string{"team"}), "Building treemap from 4 rows by team..."},
		{buildStage(4, []string{"team", "service"}), "Building treemap from 4 rows by team › service..."},
		{renderStage([]string{"html"}), "Rendering html..."},
		{renderStage([]string{"html", "plotly", "json"}), "Rendering html, plotly, json..."},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("stage = %q, want %q", tt.got, tt.want)
		}
	}
}

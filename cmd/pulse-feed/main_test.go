package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/pulse-api-client/internal/testutil"
	"github.com/Sternrassler/pulse-api-client/pkg/client"
	"github.com/Sternrassler/pulse-api-client/pkg/config"
	"github.com/Sternrassler/pulse-api-client/pkg/pagination"
)

// newPolicyCommand returns a bare command carrying only the policy flags,
// so flag resolution can be tested without touching the network.
func newPolicyCommand() (*cobra.Command, *policyFlags) {
	flags := &policyFlags{}
	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	addPolicyFlags(cmd, flags)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd, flags
}

func TestPolicyFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want pagination.Policy
	}{
		{
			name: "no flags resolves to zero policy",
			args: nil,
			want: pagination.Policy{},
		},
		{
			name: "pages",
			args: []string{"--pages", "2"},
			want: pagination.ByPages(2),
		},
		{
			name: "explicit zero pages stays a page policy",
			args: []string{"--pages", "0"},
			want: pagination.ByPages(0),
		},
		{
			name: "records",
			args: []string{"--records", "40"},
			want: pagination.ByRecords(40),
		},
		{
			name: "explicit zero records stays a record policy",
			args: []string{"--records", "0"},
			want: pagination.ByRecords(0),
		},
		{
			name: "all",
			args: []string{"--all"},
			want: pagination.All(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, flags := newPolicyCommand()
			cmd.SetArgs(tt.args)

			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			if got := flags.policy(cmd); got != tt.want {
				t.Errorf("Expected policy %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPolicyFlags_MutuallyExclusive(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"pages and records", []string{"--pages", "2", "--records", "10"}},
		{"pages and all", []string{"--pages", "2", "--all"}},
		{"records and all", []string{"--records", "10", "--all"}},
		{"all three", []string{"--pages", "1", "--records", "1", "--all"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newPolicyCommand()
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if err == nil {
				t.Fatal("Expected error for conflicting flags, got nil")
			}
			if !strings.Contains(err.Error(), "were all set") {
				t.Errorf("Expected mutual exclusion error, got: %v", err)
			}
		})
	}
}

func TestEventsCommand_StreamsJSONLines(t *testing.T) {
	api := testutil.NewMockAPI()
	defer api.Close()

	api.SetPages(client.PathEvents,
		[]string{
			`{"id": "evt-1", "name": "signup"}`,
			`{"id": "evt-2", "name": "login"}`,
		},
		[]string{
			`{"id": "evt-3", "name": "purchase"}`,
		},
	)

	t.Setenv(config.EnvBaseURL, api.URL())
	t.Setenv(config.EnvToken, "feed-token")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"events", "--all"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 JSON lines, got %d: %q", len(lines), out.String())
	}

	var first client.Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Failed to decode first line: %v", err)
	}
	if first.ID != "evt-1" || first.Name != "signup" {
		t.Errorf("Expected evt-1/signup, got %s/%s", first.ID, first.Name)
	}

	if token := api.LastBearerToken(); token != "feed-token" {
		t.Errorf("Expected bearer token feed-token, got %q", token)
	}
	if api.GetRequestCount() != 2 {
		t.Errorf("Expected 2 requests, got %d", api.GetRequestCount())
	}
}

func TestEventsCommand_PageLimit(t *testing.T) {
	api := testutil.NewMockAPI()
	defer api.Close()

	api.SetEndlessPages(client.PathEvents, 2)

	t.Setenv(config.EnvBaseURL, api.URL())
	t.Setenv(config.EnvToken, "feed-token")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"events", "--pages", "2"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("Expected 4 JSON lines from 2 pages, got %d", len(lines))
	}
	if api.GetRequestCount() != 2 {
		t.Errorf("Expected 2 requests, got %d", api.GetRequestCount())
	}
}

func TestMergedCommand_CombinesCollections(t *testing.T) {
	api := testutil.NewMockAPI()
	defer api.Close()

	api.SetPages(client.PathEvents,
		[]string{
			`{"id": "evt-1"}`,
			`{"id": "evt-2"}`,
		},
	)
	api.SetPages(client.PathPeople,
		[]string{
			`{"id": "per-1"}`,
		},
	)

	t.Setenv(config.EnvBaseURL, api.URL())
	t.Setenv(config.EnvToken, "feed-token")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"merged", "--all"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 JSON lines, got %d: %q", len(lines), out.String())
	}

	got := make(map[string]bool)
	for _, line := range lines {
		var record struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("Failed to decode line %q: %v", line, err)
		}
		got[record.ID] = true
	}
	for _, id := range []string{"evt-1", "evt-2", "per-1"} {
		if !got[id] {
			t.Errorf("Expected record %s in merged output", id)
		}
	}

	if api.GetRequestCount() != 2 {
		t.Errorf("Expected 2 requests, got %d", api.GetRequestCount())
	}
}

func TestFeedCommand_RequiresConfiguration(t *testing.T) {
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvToken, "")

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"events"})

	err := root.Execute()
	if err == nil {
		t.Fatal("Expected error without configuration, got nil")
	}
	if err.Error() != "PULSE_API_URL is required" {
		t.Errorf("Expected missing URL error, got: %v", err)
	}
}

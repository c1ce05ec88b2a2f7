package datadog

import (
	"net"
	"strings"
	"testing"
	"time"

	"rewardsetl/internal/metrics"
)

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("expected error for empty Addr")
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	got := labelsToTags(metrics.Labels{"step": "load", "dataset": "users"})
	if strings.Join(got, ",") != "dataset:users,step:load" {
		t.Fatalf("labelsToTags = %v", got)
	}
	if labelsToTags(nil) != nil {
		t.Fatalf("labelsToTags(nil) should be nil")
	}
}

// TestBackend_SendsToAgent points the client at a local UDP socket standing
// in for the agent and checks the flushed payload.
func TestBackend_SendsToAgent(t *testing.T) {
	t.Parallel()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer conn.Close()

	b, err := NewBackend(Config{Addr: conn.LocalAddr().String(), Namespace: "rewards."})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RecordsTotal, 5, metrics.Labels{"dataset": "users", "kind": "inserted"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read from fake agent: %v", err)
	}
	payload := string(buf[:n])
	if !strings.Contains(payload, "rewards.etl_records_total:5|c") {
		t.Fatalf("payload %q lacks the count", payload)
	}
	if !strings.Contains(payload, "dataset:users") {
		t.Fatalf("payload %q lacks the dataset tag", payload)
	}
}

package domain

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hamed0406/sitecheck/internal/checker"
	"github.com/hamed0406/sitecheck/internal/probe"
)

func TestCheckFromHandle_PendingThenResolved(t *testing.T) {
	release := make(chan struct{})
	p := probe.ProberFunc(func(ctx context.Context, target string) probe.CheckResult {
		<-release
		return probe.StatusResult(204, 40*time.Millisecond)
	})
	h := checker.New(checker.DefaultConfig(), p).Start("example.com")

	pending := CheckFromHandle(h)
	if pending.State != "pending" || pending.Result != nil {
		t.Fatalf("want pending view without result, got %+v", pending)
	}
	if pending.URL != "http://example.com" || pending.ID == "" {
		t.Fatalf("unexpected view: %+v", pending)
	}

	close(release)
	h.Await()
	done := CheckFromHandle(h)
	if done.State != "resolved" || done.Result == nil || done.Result.StatusCode != 204 {
		t.Fatalf("want resolved view, got %+v", done)
	}

	b, err := json.Marshal(done)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	res, _ := m["result"].(map[string]any)
	if m["state"] != "resolved" || res["available"] != true || res["category"] != "available" {
		t.Fatalf("unexpected JSON: %s", b)
	}
}

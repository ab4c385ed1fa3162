package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/logger"
	"github.com/gorilla/websocket"
)

func TestMetricsFeedStreamsSnapshots(t *testing.T) {
	svc := newTestServices()
	server := httptest.NewServer(NewRouter(svc, logger.Nop()))
	defer server.Close()

	ctx := context.Background()
	item, err := svc.Items.Create(ctx, domain.ItemInput{Description: "What does compost need?"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/metrics/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The initial snapshot arrives before any answer exists.
	typ, metrics := readMetrics(t, conn)
	if typ != "metrics" {
		t.Fatalf("expected metrics, got %s", typ)
	}
	if len(metrics) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", metrics)
	}

	if _, err := svc.Answers.Add(ctx, item.ID, domain.AnswerInput{Answer: "greens and browns"}); err != nil {
		t.Fatalf("add answer: %v", err)
	}

	_, metrics = readMetrics(t, conn)
	if len(metrics) != 1 || metrics[0].QuestionID != item.ID || metrics[0].Responses != 1 {
		t.Fatalf("unexpected snapshot after answer: %+v", metrics)
	}
}

func readMetrics(t *testing.T, conn *websocket.Conn) (string, []domain.Metric) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload []domain.Metric `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type, msg.Payload
}

package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/congo-pay/payu_gateway/internal/logging"
)

func TestLoggerNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(logging.NewWithWriter(&buf, "info"))

	err := n.Send(context.Background(), Message{Kind: KindVerifyVoidFailed, Destination: "AR", Body: "840434913|abc"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), `"kind":"verify_void_failed"`) {
		t.Fatalf("unexpected log %s", buf.String())
	}
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("nil notifier: %v", err)
	}
}

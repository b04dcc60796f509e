package bus

import "testing"

func TestSendMessageDeliversWithinCapacity(t *testing.T) {
	b := New(2, 2)
	b.SendMessage(Message{Kind: MessageTicker, Symbol: "BTC/USD"})

	select {
	case msg := <-b.Messages():
		if msg.Kind != MessageTicker || msg.Symbol != "BTC/USD" {
			t.Fatalf("unexpected message: %+v", msg)
		}
		if msg.Timestamp.IsZero() {
			t.Fatalf("expected timestamp to be stamped")
		}
	default:
		t.Fatal("expected a message to be available")
	}
}

func TestSendMessageDropsWhenFullInsteadOfBlocking(t *testing.T) {
	b := New(1, 1)
	b.SendMessage(Message{Kind: MessageTicker, Symbol: "A"})

	done := make(chan struct{})
	go func() {
		b.SendMessage(Message{Kind: MessageTicker, Symbol: "B"})
		close(done)
	}()

	select {
	case <-done:
	default:
	}
	<-done // SendMessage must never block even when the buffer is full
}

func TestSendCommandDropsWhenFull(t *testing.T) {
	b := New(1, 1)
	b.SendCommand(ConnectionCommand{Kind: CommandResync, Symbol: "BTC/USD"})
	done := make(chan struct{})
	go func() {
		b.SendCommand(ConnectionCommand{Kind: CommandCredentialsUpdated})
		close(done)
	}()
	<-done

	cmd := <-b.Commands()
	if cmd.Kind != CommandResync {
		t.Fatalf("expected the first command to survive, got %+v", cmd)
	}
}

package browser

import (
	"log/slog"
	"testing"
	"time"
)

// Recycle callbacks re-enter the Manager (rebinding reads Browser), so they
// must run without the manager lock held.
func TestRecycle_CallbacksMayUseManager(t *testing.T) {
	m := NewManager(Config{
		RemoteURL: "ws://127.0.0.1:1", // connect fails fast, no Chrome needed
		Logger:    slog.Default(),
	})

	ran := make(chan struct{})
	m.SetRecycleCallback(&RecycleCallback{
		BeforeRecycle: func() {
			m.Browser()
			close(ran)
		},
	})

	done := make(chan error, 1)
	go func() { done <- m.Recycle() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected relaunch error against unreachable control URL")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Recycle deadlocked with a callback that calls back into the manager")
	}

	select {
	case <-ran:
	default:
		t.Fatal("BeforeRecycle callback did not run")
	}
}

func TestRecycle_AfterClose(t *testing.T) {
	m := NewManager(Config{Logger: slog.Default()})
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Recycle(); err == nil {
		t.Fatal("expected error recycling a closed manager")
	}
}

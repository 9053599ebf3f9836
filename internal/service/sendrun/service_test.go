package sendrun

import (
	"context"
	"errors"
	"testing"

	"github.com/jmehdipour/wasend/internal/config"
	"github.com/jmehdipour/wasend/internal/model"
)

func TestStrategiesFromConfigOrderAndFiltering(t *testing.T) {
	cfgs := []config.StrategyConfig{
		{Name: "script", Enabled: true},
		{Name: "click", Enabled: false},
		{Name: "keystroke", Enabled: true},
		{Name: "teleport", Enabled: true}, // unknown, skipped
	}

	got := StrategiesFromConfig(cfgs, nil)
	if len(got) != 2 {
		t.Fatalf("got %d strategies, want 2", len(got))
	}
	if got[0].Name() != "script" || got[1].Name() != "keystroke" {
		t.Fatalf("order = %s, %s", got[0].Name(), got[1].Name())
	}
}

func TestStartRequiresContacts(t *testing.T) {
	svc := New(config.Config{}, nil)

	if _, err := svc.Start(nil, 0); !errors.Is(err, ErrNoContacts) {
		t.Fatalf("err = %v, want ErrNoContacts", err)
	}
}

func TestStartRequiresLoginConfirmation(t *testing.T) {
	svc := New(config.Config{}, nil)

	contacts := []model.Contact{{Number: "123", Message: "hi"}}
	if _, err := svc.Start(contacts, 0); !errors.Is(err, ErrLoginNotConfirmed) {
		t.Fatalf("err = %v, want ErrLoginNotConfirmed", err)
	}

	if svc.Confirmed() {
		t.Fatal("confirmation flag should start false")
	}
	svc.ConfirmLogin()
	if !svc.Confirmed() {
		t.Fatal("confirmation flag should be set")
	}
}

func TestLoginStateRefusedWhileRunActive(t *testing.T) {
	svc := New(config.Config{}, nil)
	svc.mu.Lock()
	svc.running = true
	svc.mu.Unlock()

	// the run goroutine owns the session; a probe would navigate it away
	// from the in-flight chat
	if _, err := svc.LoginState(context.Background()); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("err = %v, want ErrSessionBusy", err)
	}
}

func TestLoginStateSingleProbeInFlight(t *testing.T) {
	svc := New(config.Config{}, nil)
	svc.mu.Lock()
	svc.probing = true
	svc.mu.Unlock()

	if _, err := svc.LoginState(context.Background()); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("err = %v, want ErrSessionBusy", err)
	}
}

func TestStartRefusedWhileProbing(t *testing.T) {
	svc := New(config.Config{}, nil)
	svc.ConfirmLogin()
	svc.mu.Lock()
	svc.probing = true
	svc.mu.Unlock()

	contacts := []model.Contact{{Number: "123", Message: "hi"}}
	if _, err := svc.Start(contacts, 0); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("err = %v, want ErrSessionBusy", err)
	}
}

func TestCurrentWithoutRun(t *testing.T) {
	svc := New(config.Config{}, nil)

	if _, _, ok := svc.Current(); ok {
		t.Fatal("no run should be reported before the first start")
	}
	if svc.Stop() {
		t.Fatal("stop without a run should report false")
	}
}

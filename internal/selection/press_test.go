package selection

import "testing"

func TestPressFiresWhileHeld(t *testing.T) {
	var p Press
	tok := p.Begin("a")
	id, ok := p.Fire(tok)
	if !ok || id != "a" {
		t.Fatalf("Fire = %q, %v", id, ok)
	}
	if p.Held() {
		t.Fatal("press should be consumed after firing")
	}
	if _, ok := p.Cancel(); ok {
		t.Fatal("release after long press must not count as a click")
	}
}

func TestPressReleasedBeforeDelay(t *testing.T) {
	var p Press
	tok := p.Begin("a")
	id, clicked := p.Cancel()
	if !clicked || id != "a" {
		t.Fatalf("Cancel = %q, %v", id, clicked)
	}
	if _, ok := p.Fire(tok); ok {
		t.Fatal("timer must not fire after release")
	}
}

func TestPressStaleTokenIgnored(t *testing.T) {
	var p Press
	first := p.Begin("a")
	p.Cancel()
	second := p.Begin("b")
	if _, ok := p.Fire(first); ok {
		t.Fatal("stale token fired")
	}
	if id, ok := p.Fire(second); !ok || id != "b" {
		t.Fatalf("Fire(second) = %q, %v", id, ok)
	}
}

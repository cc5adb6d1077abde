package redis

import (
	"testing"
	"time"
)

func TestDraftKey(t *testing.T) {
	if got := draftKey(-100123); got != "draft:-100123" {
		t.Fatalf("got %q", got)
	}
}

func TestNewDBManager(t *testing.T) {
	m, err := NewDBManager("cache.example.com:6379", "secret", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	opt := m.client.Options()
	if opt.Addr != "cache.example.com:6379" || opt.Password != "secret" || opt.TLSConfig == nil {
		t.Fatalf("unexpected options %+v", opt)
	}
	if m.ttl != time.Hour {
		t.Fatalf("ttl %v", m.ttl)
	}

	m2, err := NewDBManager("redis://localhost:6379/2", "", 0)
	if err != nil {
		t.Fatalf("new manager from url: %v", err)
	}
	defer m2.Close()
	if m2.client.Options().DB != 2 || m2.client.Options().TLSConfig != nil {
		t.Fatalf("unexpected options %+v", m2.client.Options())
	}

	if _, err := NewDBManager("ftp://nope", "", 0); err == nil {
		t.Fatalf("expect error for bad scheme")
	}
}

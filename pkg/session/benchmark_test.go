package session_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func BenchmarkManager_Create(b *testing.B) {
	cfg := session.DefaultConfig()
	cfg.SavePath = b.TempDir()
	manager, err := session.New(session.WithConfig(cfg), session.WithStorage(newMemStorage()))
	if err != nil {
		b.Fatal(err)
	}
	defer manager.Close()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := manager.Create(ctx, "", ""); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkManager_Find(b *testing.B) {
	cfg := session.DefaultConfig()
	cfg.SavePath = b.TempDir()
	manager, err := session.New(session.WithConfig(cfg), session.WithStorage(newMemStorage()))
	if err != nil {
		b.Fatal(err)
	}
	defer manager.Close()
	ctx := context.Background()

	for i := range 1000 {
		if _, err := manager.Create(ctx, "s"+strconv.Itoa(i), ""); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			manager.Find("s" + strconv.Itoa(i%1000))
			i++
		}
	})
}

func BenchmarkSession_Checksum(b *testing.B) {
	s := session.NewSession("abc", "sessid")
	for i := range 20 {
		s.Set("key-"+strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Checksum()
	}
}

func BenchmarkPersister_Persist(b *testing.B) {
	cfg := session.DefaultConfig()
	cfg.SavePath = b.TempDir()
	manager, err := session.New(session.WithConfig(cfg), session.WithStorage(newMemStorage()))
	if err != nil {
		b.Fatal(err)
	}
	defer manager.Close()
	ctx := context.Background()

	sessions := make([]*session.Session, 0, 500)
	for i := range 500 {
		s, err := manager.Create(ctx, "s"+strconv.Itoa(i), "")
		if err != nil {
			b.Fatal(err)
		}
		sessions = append(sessions, s)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sessions[i%len(sessions)].Set("n", i)
		if _, err := manager.Persister().Persist(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

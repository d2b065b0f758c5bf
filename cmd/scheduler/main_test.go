package main

import (
	"io"
	"log/slog"
	"testing"
)

func TestExclusiveSkipsWhileAnotherJobRuns(t *testing.T) {
	gate := &exclusive{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	syncJob := gate.wrap("sync", func() {
		close(started)
		<-release
	})
	analyzeRuns := 0
	analyzeJob := gate.wrap("analyze", func() { analyzeRuns++ })

	go func() {
		syncJob()
		close(done)
	}()
	<-started

	analyzeJob()
	if analyzeRuns != 0 {
		t.Fatal("analyze ran while sync held the lock")
	}

	close(release)
	<-done
	analyzeJob()
	if analyzeRuns != 1 {
		t.Errorf("analyze runs = %d, want 1 after sync finished", analyzeRuns)
	}
}

func TestExclusiveReleasesAfterPanic(t *testing.T) {
	gate := &exclusive{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	func() {
		defer func() { _ = recover() }()
		gate.wrap("sync", func() { panic("boom") })()
	}()

	ran := false
	gate.wrap("analyze", func() { ran = true })()
	if !ran {
		t.Error("lock was not released after a panicking job")
	}
}

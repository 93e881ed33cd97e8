package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	return ln
}

func TestServe_WaitsForInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		io.WriteString(w, "done")
	})}
	ln := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stopped bool
	served := make(chan error, 1)
	go func() {
		served <- serve(ctx, srv, ln, 5*time.Second, func(context.Context) { stopped = true })
	}()

	type result struct {
		body string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			got <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		got <- result{body: string(b), err: err}
	}()

	<-started
	cancel()

	select {
	case err := <-served:
		t.Fatalf("serve returned while a request was in flight: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("serve failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the request finished")
	}
	if !stopped {
		t.Error("expected beforeShutdown to run")
	}

	r := <-got
	if r.err != nil || r.body != "done" {
		t.Errorf("in-flight request = %q, %v; want done", r.body, r.err)
	}
}

func TestServe_ShutdownHookEndsStreams(t *testing.T) {
	closing := make(chan struct{})
	started := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-closing:
		case <-r.Context().Done():
		}
	})}
	srv.RegisterOnShutdown(func() { close(closing) })
	ln := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- serve(ctx, srv, ln, 5*time.Second, nil) }()

	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started
	cancel()

	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("serve failed: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("long-lived request kept the server from stopping")
	}
}

func TestServe_DrainTimeout(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	})}
	ln := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- serve(ctx, srv, ln, 100*time.Millisecond, nil) }()

	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started
	cancel()

	select {
	case err := <-served:
		if err == nil {
			t.Error("expected an error when requests outlive the timeout")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve ignored its timeout")
	}
}

func TestServe_ListenerError(t *testing.T) {
	ln := listen(t)
	ln.Close()

	err := serve(context.Background(), &http.Server{}, ln, time.Second, nil)
	if err == nil {
		t.Fatal("expected error from a closed listener")
	}
}

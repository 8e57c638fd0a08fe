package dev

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialReload(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestReloadServer_Broadcast(t *testing.T) {
	reload := NewReloadServer()
	defer reload.Close()

	server := httptest.NewServer(http.HandlerFunc(reload.HandleWebSocket))
	defer server.Close()

	conn := dialReload(t, server)
	defer conn.Close()

	// Give the server a moment to register the client.
	deadline := time.Now().Add(time.Second)
	for reload.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := reload.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}

	reload.NotifyReload()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ReloadMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != ReloadTypeFull {
		t.Errorf("Type = %q, want %q", msg.Type, ReloadTypeFull)
	}
}

func TestReloadServer_CSSAndError(t *testing.T) {
	reload := NewReloadServer()
	defer reload.Close()

	server := httptest.NewServer(http.HandlerFunc(reload.HandleWebSocket))
	defer server.Close()

	conn := dialReload(t, server)
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for reload.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	reload.NotifyCSS("app.css")
	reload.NotifyError("build failed")
	reload.ClearError()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var css ReloadMessage
	if err := conn.ReadJSON(&css); err != nil {
		t.Fatalf("read css: %v", err)
	}
	if css.Type != ReloadTypeCSS || css.File != "app.css" {
		t.Errorf("css message = %+v", css)
	}

	var errMsg ReloadMessage
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if errMsg.Type != ReloadTypeError || errMsg.Error != "build failed" {
		t.Errorf("error message = %+v", errMsg)
	}

	var clear ReloadMessage
	if err := conn.ReadJSON(&clear); err != nil {
		t.Fatalf("read clear: %v", err)
	}
	if clear.Type != ReloadTypeClear {
		t.Errorf("clear message = %+v", clear)
	}
}

func TestReloadServer_ClientDisconnect(t *testing.T) {
	reload := NewReloadServer()
	defer reload.Close()

	server := httptest.NewServer(http.HandlerFunc(reload.HandleWebSocket))
	defer server.Close()

	conn := dialReload(t, server)

	deadline := time.Now().Add(time.Second)
	for reload.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	// The next broadcast drops the dead connection.
	reload.NotifyReload()

	deadline = time.Now().Add(time.Second)
	for reload.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := reload.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d after disconnect, want 0", got)
	}
}

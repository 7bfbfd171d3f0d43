package controller

import (
	"io"
	"log"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"writedesk/models"
	"writedesk/notify"
	"writedesk/utils"
)

// startRelay serves the websocket endpoint on a real port so tests can
// dial it like a browser would.
func startRelay(t *testing.T, hub *notify.Hub) string {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws/notifications", fiberws.New(HandleNotificationWS(hub, log.New(io.Discard, "", 0))))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})
	return "ws://" + ln.Addr().String() + "/ws/notifications"
}

func dialRelay(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func accessToken(t *testing.T, user *models.User) string {
	t.Helper()
	access, _, err := utils.GenerateJWTToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return access
}

func TestRelayAuthenticatedChannelReceivesPushes(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, 7, models.RoleWriter)

	hub := notify.NewHub()
	conn := dialRelay(t, startRelay(t, hub))

	err := conn.WriteJSON(map[string]string{"type": "auth", "token": accessToken(t, user)})
	if err != nil {
		t.Fatalf("send auth: %v", err)
	}

	var reply map[string]string
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read handshake reply: %v", err)
	}
	if reply["type"] != "auth_ok" {
		t.Fatalf("expected auth_ok, got %v", reply)
	}
	if hub.Connected(user.ID) != 1 {
		t.Fatalf("expected 1 registered channel, got %d", hub.Connected(user.ID))
	}

	// Fan out from several goroutines at once, the way concurrent
	// requests do. Every frame must arrive intact.
	const workers = 4
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				hub.Push(user.ID, notify.PushMessage{
					Type: "notification",
					Data: notify.PushMessageData{Event: notify.EventCommentAdded, Title: "New comment"},
				})
			}
		}()
	}

	received := 0
	for received < workers*perWorker {
		var msg notify.PushMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read push %d: %v", received+1, err)
		}
		if msg.Type != "notification" {
			t.Fatalf("unexpected frame: %+v", msg)
		}
		received++
	}
	wg.Wait()
}

func TestRelayClosesOnInvalidToken(t *testing.T) {
	setupTestDB(t)

	hub := notify.NewHub()
	conn := dialRelay(t, startRelay(t, hub))

	err := conn.WriteJSON(map[string]string{"type": "auth", "token": "not-a-jwt"})
	if err != nil {
		t.Fatalf("send auth: %v", err)
	}

	var reply map[string]string
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply["type"] != "error" {
		t.Fatalf("expected error frame, got %v", reply)
	}

	// The server hangs up after the rejection
	if err := conn.ReadJSON(&reply); err == nil {
		t.Fatal("expected the channel to be closed")
	}
}

func TestRelayClosesWithoutAuthFrame(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, 7, models.RoleWriter)

	hub := notify.NewHub()
	conn := dialRelay(t, startRelay(t, hub))

	// A first frame that is not an auth message is rejected even when
	// the caller could have authenticated.
	if err := conn.WriteJSON(map[string]string{"type": "hello"}); err != nil {
		t.Fatalf("send frame: %v", err)
	}

	var reply map[string]string
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply["type"] != "error" {
		t.Fatalf("expected error frame, got %v", reply)
	}
	if err := conn.ReadJSON(&reply); err == nil {
		t.Fatal("expected the channel to be closed")
	}
	if hub.Connected(user.ID) != 0 {
		t.Errorf("rejected channel must not be registered, got %d", hub.Connected(user.ID))
	}
}

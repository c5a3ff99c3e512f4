package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/thereayou/groupchat/cmd/server"
	"github.com/thereayou/groupchat/internal/config"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/handlers"
	"github.com/thereayou/groupchat/internal/services"
	"github.com/thereayou/groupchat/internal/websocket"
	"github.com/thereayou/groupchat/pkg/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	hub    *websocket.Hub
	srv    *httptest.Server
}

type envelope struct {
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"errorCode"`
}

type testUser struct {
	ID    uuid.UUID
	Token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:handlers_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db := database.NewDatabase(gdb)

	revoker := auth.NewMemoryRevoker()
	access := auth.NewJWTManager("access", time.Minute)
	refresh := auth.NewJWTManager("refresh", time.Hour)

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	messages := services.NewMessageService(db)
	membership := services.NewMembershipService(db, hub)
	h := server.Handlers{
		Auth:     handlers.NewAuthHandler(services.NewAuthService(db, access, refresh, revoker)),
		Contacts: handlers.NewContactHandler(services.NewContactService(db)),
		Groups:   handlers.NewGroupHandler(services.NewGroupService(db, hub), membership),
		Messages: handlers.NewHTTPMessageHandler(messages),
		Uploads:  handlers.NewUploadHandler(services.NewUploadService(db, nil, time.Minute)),
		WebSocket: handlers.NewWebSocketHandler(hub, handlers.NewMessageHandler(hub, messages, membership),
			websocket.DefaultClientOptions(), nil),
	}

	r := gin.New()
	server.APIEndpoints(r, config.Config{}, h, access, revoker)

	env := &testEnv{router: r, hub: hub, srv: httptest.NewServer(r)}
	t.Cleanup(func() {
		env.srv.Close()
		cancel()
		_ = db.Close()
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) envelope {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	if env.Status != w.Code {
		t.Fatalf("%s %s: envelope status %d, http %d", method, path, env.Status, w.Code)
	}
	return env
}

func expectStatus(t *testing.T, env envelope, status int, code string) {
	t.Helper()
	if env.Status != status || env.ErrorCode != code {
		t.Fatalf("expected %d/%q, got %d/%q (%s)", status, code, env.Status, env.ErrorCode, env.Message)
	}
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func (e *testEnv) signUp(t *testing.T, name string) testUser {
	t.Helper()

	env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName":   name,
		"lastName":    "Test",
		"emailId":     name + "@example.com",
		"phoneNumber": "+1" + uuid.NewString()[:8],
		"password":    "password123",
	})
	expectStatus(t, env, http.StatusCreated, "")

	env = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"emailId":  name + "@example.com",
		"password": "password123",
	})
	expectStatus(t, env, http.StatusOK, "")

	var tokens services.AuthTokens
	decodeData(t, env, &tokens)
	return testUser{ID: tokens.User.ID, Token: tokens.AccessToken}
}

func (e *testEnv) befriend(t *testing.T, a, b testUser) {
	t.Helper()
	env := e.do(t, http.MethodPost, "/api/contacts", a.Token, map[string]string{"contactId": b.ID.String()})
	expectStatus(t, env, http.StatusCreated, "")
}

func (e *testEnv) dial(t *testing.T, u testUser) *gws.Conn {
	t.Helper()

	before := e.hub.ConnectionCount()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?token=" + u.Token
	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v (%v)", err, resp)
	}
	t.Cleanup(func() { conn.Close() })

	// Register выполняется после upgrade, ждем пока соединение появится в hub
	deadline := time.Now().Add(2 * time.Second)
	for e.hub.ConnectionCount() == before && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func send(t *testing.T, conn *gws.Conn, msgType websocket.MessageType, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(websocket.Message{Type: msgType, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func expectEvent(t *testing.T, conn *gws.Conn, msgType websocket.MessageType, v interface{}) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg websocket.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("waiting for %s: %v", msgType, err)
	}
	if msg.Type != msgType {
		t.Fatalf("expected %s, got %s %s", msgType, msg.Type, msg.Data)
	}
	if v != nil {
		if err := json.Unmarshal(msg.Data, v); err != nil {
			t.Fatalf("decode %s: %v", msgType, err)
		}
	}
}

func expectSilence(t *testing.T, conn *gws.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	var msg websocket.Message
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("expected no event, got %s %s", msg.Type, msg.Data)
	}
}

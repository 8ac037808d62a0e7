package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pulsechat/pulse/internal/events"
	"github.com/pulsechat/pulse/internal/models"
	"github.com/pulsechat/pulse/internal/repositories"
	"github.com/pulsechat/pulse/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// Minimal in-memory backends so the router can be exercised end to end.

type memPresenceStore struct {
	records map[string]models.PresenceRecord
}

func (m *memPresenceStore) Upsert(ctx context.Context, r *models.PresenceRecord) error {
	m.records[r.UserID] = *r
	return nil
}

func (m *memPresenceStore) GetByUserID(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	r, ok := m.records[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

type memPresenceCache struct {
	entries map[string]models.PresenceRecord
}

func (m *memPresenceCache) Set(ctx context.Context, r *models.PresenceRecord) error {
	m.entries[r.UserID] = *r
	return nil
}

func (m *memPresenceCache) Get(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	r, ok := m.entries[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (m *memPresenceCache) GetBulk(ctx context.Context, userIDs []string) ([]*models.PresenceRecord, error) {
	records := make([]*models.PresenceRecord, len(userIDs))
	for i, id := range userIDs {
		if r, ok := m.entries[id]; ok {
			rr := r
			records[i] = &rr
		}
	}
	return records, nil
}

func (m *memPresenceCache) Touch(ctx context.Context, userID string) error  { return nil }
func (m *memPresenceCache) Delete(ctx context.Context, userID string) error { return nil }

type memNotificationRepo struct {
	notifications []*models.Notification
}

func (m *memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memNotificationRepo) GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error) {
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			return n, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memNotificationRepo) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]*models.Notification, int64, error) {
	var matched []*models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			matched = append(matched, n)
		}
	}
	return matched, int64(len(matched)), nil
}

func (m *memNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, userID string) (*models.Notification, error) {
	n, err := m.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}

func (m *memNotificationRepo) MarkAllRead(ctx context.Context, userID string, ids []uuid.UUID) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (m *memNotificationRepo) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memNotificationRepo) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	for i, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, topic, eventType string, payload events.Payload) error {
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *memNotificationRepo) {
	t.Helper()
	presence := services.NewPresenceService(
		&memPresenceStore{records: make(map[string]models.PresenceRecord)},
		&memPresenceCache{entries: make(map[string]models.PresenceRecord)},
		nopPublisher{},
	)
	repo := &memNotificationRepo{}
	notifications := services.NewNotificationService(repo)
	return NewRouter(testSecret, NewPresenceHandler(presence), NewNotificationHandler(notifications)), repo
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestAuth_MissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/presence/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongSignature(t *testing.T) {
	router, _ := newTestRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/presence/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth_NoAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPresence_UpdateThenGetMe(t *testing.T) {
	router, _ := newTestRouter(t)
	auth := bearerToken(t, "u1")

	req := httptest.NewRequest(http.MethodPost, "/presence/update", strings.NewReader(`{"status":"ONLINE"}`))
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/presence/me", nil)
	req.Header.Set("Authorization", auth)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var record models.PresenceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, models.StatusOnline, record.Status)
	assert.NotNil(t, record.LastSeenAt)
}

func TestPresence_UpdateInvalidStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/presence/update", strings.NewReader(`{"status":"SLEEPING"}`))
	req.Header.Set("Authorization", bearerToken(t, "u1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresence_GetUnknownUserIsOffline(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/presence/user/ghost", nil)
	req.Header.Set("Authorization", bearerToken(t, "u1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var record models.PresenceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, models.StatusOffline, record.Status)
	assert.Nil(t, record.LastSeenAt)
}

func TestPresence_Bulk(t *testing.T) {
	router, _ := newTestRouter(t)
	auth := bearerToken(t, "u1")

	req := httptest.NewRequest(http.MethodPost, "/presence/update", strings.NewReader(`{"status":"AWAY"}`))
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/presence/bulk", strings.NewReader(`{"userIds":["u2","u1"]}`))
	req.Header.Set("Authorization", auth)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.PresenceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "u2", records[0].UserID)
	assert.Equal(t, models.StatusOffline, records[0].Status)
	assert.Equal(t, "u1", records[1].UserID)
	assert.Equal(t, models.StatusAway, records[1].Status)
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	router, repo := newTestRouter(t)
	auth := bearerToken(t, "u1")

	n := &models.Notification{
		UserID:  "u1",
		Type:    models.NotificationNewMessage,
		Title:   "New Message",
		Message: "You have a new message",
	}
	require.NoError(t, repo.Create(context.Background(), n))

	req := httptest.NewRequest(http.MethodGet, "/notifications/", nil)
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.NotificationPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.UnreadCount)

	req = httptest.NewRequest(http.MethodPatch, "/notifications/"+n.ID.String()+"/read", nil)
	req.Header.Set("Authorization", auth)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Read)
}

func TestNotifications_MarkReadNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/notifications/"+uuid.New().String()+"/read", nil)
	req.Header.Set("Authorization", bearerToken(t, "u1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

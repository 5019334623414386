package services

import (
	"context"
	"fmt"
	"pos_backoffice_go/models"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []SessionEvent
}

func (r *recordedEvents) listener() SessionListener {
	return func(ctx context.Context, event SessionEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, event)
	}
}

func (r *recordedEvents) kinds() []SessionEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]SessionEventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func setupController(t *testing.T, client *fakeClient) (*SessionController, *recordedEvents, *SessionStore) {
	database := setupServiceTestDB(t)
	store := NewSessionStore(database, newTestCipher(t))
	controller := NewSessionController(store, client, NewNotifier(database))
	events := &recordedEvents{}
	controller.Subscribe(events.listener())
	return controller, events, store
}

func toastMessages(t *testing.T, store *SessionStore, clientID string) []string {
	var messages []string
	for _, n := range pendingToasts(t, store.DB, clientID) {
		messages = append(messages, n.Message)
	}
	return messages
}

func TestGenerateClientID(t *testing.T) {
	id1, err := GenerateClientID()
	require.NoError(t, err)
	id2, err := GenerateClientID()
	require.NoError(t, err)

	assert.Len(t, id1, ClientIDLength)
	assert.NotEqual(t, id1, id2)
}

func TestSessionControllerLogin(t *testing.T) {
	ctx := context.Background()
	meta := RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"}

	t.Run("Success", func(t *testing.T) {
		controller, events, store := setupController(t, &fakeClient{})

		session, err := controller.Login(ctx, "c1", "a@b.com", "x", meta)
		require.NoError(t, err)
		assert.Equal(t, "s1", session.Token)

		current, err := controller.Current(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, "Ana (admin)", current.Label())

		assert.Equal(t, []SessionEventKind{SessionStarted}, events.kinds())
		assert.Equal(t, "a@b.com", events.events[0].Email)
		assert.Equal(t, meta, events.events[0].Meta)
		assert.Equal(t, []string{"Login exitoso"}, toastMessages(t, store, "c1"))
	})

	t.Run("ProfileWithoutName", func(t *testing.T) {
		client := &fakeClient{login: func(email, password string) (*models.Session, error) {
			return &models.Session{Token: "s9", User: models.UserProfile{Name: "", Role: "cajero"}}, nil
		}}
		controller, events, store := setupController(t, client)

		session, err := controller.Login(ctx, "c1", "caja@b.com", "x", meta)
		require.NoError(t, err)
		assert.Equal(t, "s9", session.Token)

		current, err := controller.Current(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, "s9", current.Token)
		assert.Equal(t, "cajero", current.User.Role)

		assert.Equal(t, []SessionEventKind{SessionStarted}, events.kinds())
		assert.Equal(t, []string{"Login exitoso"}, toastMessages(t, store, "c1"))
	})

	t.Run("RejectedWithDetail", func(t *testing.T) {
		client := &fakeClient{login: func(email, password string) (*models.Session, error) {
			return nil, &APIError{StatusCode: 401, Detail: "Credenciales inválidas"}
		}}
		controller, events, store := setupController(t, client)

		session, err := controller.Login(ctx, "c1", "a@b.com", "bad", meta)
		assert.Error(t, err)
		assert.Nil(t, session)

		current, err := controller.Current(ctx, "c1")
		assert.NoError(t, err)
		assert.Nil(t, current)

		assert.Equal(t, []SessionEventKind{SessionRejected}, events.kinds())
		assert.Contains(t, events.events[0].Reason, "401")
		assert.Equal(t, []string{"Credenciales inválidas"}, toastMessages(t, store, "c1"))
	})

	t.Run("RejectedWithoutDetail", func(t *testing.T) {
		client := &fakeClient{login: func(email, password string) (*models.Session, error) {
			return nil, &APIError{StatusCode: 500}
		}}
		controller, _, store := setupController(t, client)

		_, err := controller.Login(ctx, "c1", "a@b.com", "x", meta)
		assert.Error(t, err)
		assert.Equal(t, []string{"Error en login"}, toastMessages(t, store, "c1"))
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := &fakeClient{login: func(email, password string) (*models.Session, error) {
			return nil, fmt.Errorf("%w: dial tcp", ErrConnection)
		}}
		controller, events, store := setupController(t, client)

		_, err := controller.Login(ctx, "c1", "a@b.com", "x", meta)
		assert.ErrorIs(t, err, ErrConnection)
		assert.Equal(t, "back office unreachable", events.events[0].Reason)
		assert.Equal(t, []string{"Error de conexión"}, toastMessages(t, store, "c1"))
	})

	t.Run("FailureKeepsExistingSession", func(t *testing.T) {
		fail := false
		client := &fakeClient{login: func(email, password string) (*models.Session, error) {
			if fail {
				return nil, &APIError{StatusCode: 401}
			}
			return anaSession, nil
		}}
		controller, _, _ := setupController(t, client)

		_, err := controller.Login(ctx, "c1", "a@b.com", "x", meta)
		require.NoError(t, err)

		fail = true
		_, err = controller.Login(ctx, "c1", "a@b.com", "bad", meta)
		assert.Error(t, err)

		current, err := controller.Current(ctx, "c1")
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, "s1", current.Token)
	})
}

func TestSessionControllerLogout(t *testing.T) {
	ctx := context.Background()
	controller, events, store := setupController(t, &fakeClient{})

	_, err := controller.Login(ctx, "c1", "a@b.com", "x", RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, controller.Logout(ctx, "c1", RequestMeta{}))
	current, err := controller.Current(ctx, "c1")
	assert.NoError(t, err)
	assert.Nil(t, current)

	// Second logout is a no-op
	require.NoError(t, controller.Logout(ctx, "c1", RequestMeta{}))

	assert.Equal(t, []SessionEventKind{SessionStarted, SessionEnded}, events.kinds())
	assert.Equal(t, []string{"Login exitoso", "Sesión cerrada"}, toastMessages(t, store, "c1"))
}

func TestSessionControllerExpire(t *testing.T) {
	ctx := context.Background()
	controller, events, store := setupController(t, &fakeClient{})
	require.NoError(t, store.Save(ctx, "c1", anaSession))

	controller.Expire(ctx, "c1")

	current, err := controller.Current(ctx, "c1")
	assert.NoError(t, err)
	assert.Nil(t, current)

	require.Len(t, events.events, 1)
	assert.Equal(t, SessionEnded, events.events[0].Kind)
	assert.Equal(t, "expired", events.events[0].Reason)

	pending := pendingToasts(t, store.DB, "c1")
	require.Len(t, pending, 1)
	assert.Equal(t, models.NotificationWarning, pending[0].Kind)
}

func TestSessionControllerCurrentIgnoresCorruptSession(t *testing.T) {
	ctx := context.Background()
	controller, _, store := setupController(t, &fakeClient{})
	require.NoError(t, store.Save(ctx, "c1", anaSession))
	require.NoError(t, store.DB.Where("entry_key = ?", models.StorageKeyUser).Delete(&models.StorageEntry{}).Error)

	current, err := controller.Current(ctx, "c1")
	assert.NoError(t, err)
	assert.Nil(t, current)
}

func TestSessionControllerListenersRunInOrder(t *testing.T) {
	ctx := context.Background()
	controller, _, _ := setupController(t, &fakeClient{})

	var order []string
	controller.Subscribe(func(ctx context.Context, event SessionEvent) { order = append(order, "first") })
	controller.Subscribe(func(ctx context.Context, event SessionEvent) { order = append(order, "second") })

	_, err := controller.Login(ctx, "c1", "a@b.com", "x", RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

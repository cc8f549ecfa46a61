package wizard

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/persistence"
	"github.com/mmeshcher/checkout-system/internal/pricing"
	"github.com/mmeshcher/checkout-system/internal/store"
)

// Manager создаёт сессии оформления заказа и удаляет брошенные по TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	storage  persistence.Storage
	txClient TransactionClient
	logger   *zap.Logger
	ttl      time.Duration

	onSuccess func(sessionID string, product model.Product)
}

// NewManager создаёт менеджер сессий с указанным хранилищем черновиков и платёжным клиентом.
// Хранилище может быть nil, тогда черновики живут только в памяти.
func NewManager(storage persistence.Storage, txClient TransactionClient, logger *zap.Logger, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		storage:  storage,
		txClient: txClient,
		logger:   logger,
		ttl:      ttl,
	}
}

// SetOnSuccess регистрирует единственного подписчика события успешной оплаты.
func (m *Manager) SetOnSuccess(fn func(sessionID string, product model.Product)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSuccess = fn
}

// NewSessionID возвращает новый случайный идентификатор сессии.
func NewSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(buf)
}

// Open открывает сессию оформления указанного товара.
// Черновик с тем же идентификатором восстанавливается из долговременного
// хранилища, поэтому перезагрузка страницы или перезапуск сервиса не теряют ввод.
// Существующая сессия с тем же идентификатором заменяется: мастер всегда
// открывается с шага выбора способа оплаты.
func (m *Manager) Open(ctx context.Context, id string, product model.Product) *Session {
	st := store.NewCheckoutStore()
	bridge := persistence.NewBridge(m.storage, st, id, m.logger)
	bridge.LoadOnce(ctx)

	// Количество из восстановленного черновика могло относиться к другому
	// товару и выходить за пределы остатка.
	if quantity := st.State().Quantity; quantity != pricing.ClampQuantity(quantity, product.Stock) {
		st.SetQuantity(pricing.ClampQuantity(quantity, product.Stock))
		bridge.Flush(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{
		id:        id,
		product:   product,
		step:      StepMethod,
		store:     st,
		bridge:    bridge,
		txClient:  m.txClient,
		onSuccess: m.onSuccess,
		touchedAt: time.Now(),
	}

	m.sessions[id] = session
	return session
}

// Get возвращает сессию по идентификатору.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Remove удаляет сессию из менеджера. Черновик в хранилище не трогается.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// StartSweeper запускает фоновую очистку сессий, к которым давно не обращались.
func (m *Manager) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *Manager) sweep() {
	deadline := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		session.mu.Lock()
		expired := session.touchedAt.Before(deadline) && !session.processing
		closed := session.step == StepClosed
		session.mu.Unlock()

		if expired || closed {
			delete(m.sessions, id)
		}
	}
}

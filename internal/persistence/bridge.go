// Package persistence синхронизирует черновик оформления заказа с долговременным хранилищем.
package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/store"
)

// ErrNotFound возвращается хранилищем, если по ключу нет сохранённого черновика.
var ErrNotFound = errors.New("draft not found")

// Storage описывает контракт долговременного хранилища черновиков.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// Bridge зеркалирует состояние CheckoutStore в долговременное хранилище.
// При отсутствии хранилища все операции превращаются в no-op,
// и сессия продолжает работать только в памяти.
type Bridge struct {
	storage      Storage
	store        *store.CheckoutStore
	key          string
	logger       *zap.Logger
	loaded       bool
	savedVersion uint64
}

// NewBridge создаёт мост персистентности для указанного хранилища и ключа сессии.
func NewBridge(storage Storage, st *store.CheckoutStore, key string, logger *zap.Logger) *Bridge {
	return &Bridge{
		storage: storage,
		store:   st,
		key:     key,
		logger:  logger,
	}
}

// LoadOnce восстанавливает черновик из хранилища не более одного раза за сессию.
// Повторный вызов не перезаписывает правки пользователя, сделанные после восстановления.
// Повреждённые данные логируются и игнорируются, сессия продолжается с значениями по умолчанию.
func (b *Bridge) LoadOnce(ctx context.Context) {
	if b.loaded {
		return
	}
	b.loaded = true

	if b.storage == nil {
		return
	}

	payload, err := b.storage.Load(ctx, b.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.logger.Error("load checkout draft", zap.Error(err), zap.String("key", b.key))
		}
		return
	}

	var state model.CheckoutState
	if err := json.Unmarshal(payload, &state); err != nil {
		b.logger.Error("parse checkout draft", zap.Error(err), zap.String("key", b.key))
		return
	}

	b.store.Initialize(state)
	b.savedVersion = b.store.Version()
}

// Flush сохраняет черновик, если его версия изменилась с последней записи.
// Ошибки записи логируются и не прерывают сессию.
func (b *Bridge) Flush(ctx context.Context) {
	if b.storage == nil {
		return
	}

	version := b.store.Version()
	if version == b.savedVersion {
		return
	}

	payload, err := json.Marshal(b.store.State())
	if err != nil {
		b.logger.Error("serialize checkout draft", zap.Error(err), zap.String("key", b.key))
		return
	}

	if err := b.storage.Save(ctx, b.key, payload); err != nil {
		b.logger.Error("save checkout draft", zap.Error(err), zap.String("key", b.key))
		return
	}

	b.savedVersion = version
}

// Clear удаляет черновик из долговременного хранилища.
func (b *Bridge) Clear(ctx context.Context) {
	if b.storage == nil {
		return
	}

	if err := b.storage.Delete(ctx, b.key); err != nil {
		b.logger.Error("delete checkout draft", zap.Error(err), zap.String("key", b.key))
		return
	}

	b.savedVersion = b.store.Version()
}

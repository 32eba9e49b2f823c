package repository

import (
	"context"
	"time"

	"panaderia/internal/model"

	"gorm.io/gorm"
)

type ChatRepository interface {
	CreateSesion(ctx context.Context, s *model.ChatSession) error
	// FindSesionActiva returns gorm.ErrRecordNotFound unless the session exists,
	// belongs to usuarioID and is still active.
	FindSesionActiva(ctx context.Context, id, usuarioID uint) (*model.ChatSession, error)
	FindSesion(ctx context.Context, id, usuarioID uint) (*model.ChatSession, error)
	// CerrarSesion closes an active session owned by usuarioID. Returns
	// gorm.ErrRecordNotFound when no row matched.
	CerrarSesion(ctx context.Context, id, usuarioID uint, fin time.Time) error
	ListSesiones(ctx context.Context, usuarioID uint, soloActivas bool, limit int) ([]model.ChatSession, error)

	// RegistrarConsulta appends q and increments the session counter in one transaction.
	RegistrarConsulta(ctx context.Context, q *model.VoiceQuery) error
	IncrementarConsultas(ctx context.Context, sesionID uint) error
	CreateVoiceQuery(ctx context.Context, q *model.VoiceQuery) error
	// ListVoiceQueries returns the newest `limit` queries of a session, newest first.
	ListVoiceQueries(ctx context.Context, sesionID uint, limit int) ([]model.VoiceQuery, error)
}

type chatRepo struct{ db *gorm.DB }

func NewChatRepository(db *gorm.DB) ChatRepository { return &chatRepo{db: db} }

func (r *chatRepo) CreateSesion(ctx context.Context, s *model.ChatSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *chatRepo) FindSesionActiva(ctx context.Context, id, usuarioID uint) (*model.ChatSession, error) {
	var s model.ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND usuario_id = ? AND session_active = ?", id, usuarioID, true).
		First(&s).Error
	return &s, err
}

func (r *chatRepo) FindSesion(ctx context.Context, id, usuarioID uint) (*model.ChatSession, error) {
	var s model.ChatSession
	err := r.db.WithContext(ctx).Where("id = ? AND usuario_id = ?", id, usuarioID).First(&s).Error
	return &s, err
}

func (r *chatRepo) CerrarSesion(ctx context.Context, id, usuarioID uint, fin time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ? AND usuario_id = ? AND session_active = ?", id, usuarioID, true).
		Updates(map[string]interface{}{
			"session_end":    fin,
			"session_active": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *chatRepo) ListSesiones(ctx context.Context, usuarioID uint, soloActivas bool, limit int) ([]model.ChatSession, error) {
	q := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID)
	if soloActivas {
		q = q.Where("session_active = ?", true)
	}
	var sesiones []model.ChatSession
	err := q.Order("session_start DESC").Order("id DESC").Limit(limit).Find(&sesiones).Error
	return sesiones, err
}

func (r *chatRepo) RegistrarConsulta(ctx context.Context, q *model.VoiceQuery) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		return incrementar(tx, q.ChatSessionID)
	})
}

func (r *chatRepo) IncrementarConsultas(ctx context.Context, sesionID uint) error {
	return incrementar(r.db.WithContext(ctx), sesionID)
}

// incrementar is a single UPDATE so concurrent queries on the same session
// never lose an increment.
func incrementar(db *gorm.DB, sesionID uint) error {
	res := db.Model(&model.ChatSession{}).Where("id = ?", sesionID).
		Update("total_queries", gorm.Expr("total_queries + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *chatRepo) CreateVoiceQuery(ctx context.Context, q *model.VoiceQuery) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *chatRepo) ListVoiceQueries(ctx context.Context, sesionID uint, limit int) ([]model.VoiceQuery, error) {
	var queries []model.VoiceQuery
	err := r.db.WithContext(ctx).Where("chat_session_id = ?", sesionID).
		Order("fecha DESC").Order("id DESC").Limit(limit).Find(&queries).Error
	return queries, err
}
